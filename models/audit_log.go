package models

import (
	"encoding/json"
	"time"
)

// AuditLog records staff authentication and security events. Domain
// history on grievances and appointments lives in timeline_events, not
// here.
type AuditLog struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	StaffUserID  *uint           `gorm:"index:idx_audit_staff_user_id" json:"staff_user_id,omitempty"`
	StaffUser    *StaffUser      `gorm:"foreignKey:StaffUserID;references:ID" json:"staff_user,omitempty"`
	Action       string          `gorm:"type:audit_action_enum;not null;index:idx_audit_action" json:"action"`
	Description  *string         `gorm:"type:text" json:"description,omitempty"`
	IPAddress    *string         `gorm:"type:inet;index:idx_audit_ip_address" json:"ip_address,omitempty"`
	UserAgent    *string         `gorm:"type:text" json:"user_agent,omitempty"`
	RequestID    *string         `gorm:"size:255;index:idx_audit_request_id" json:"request_id,omitempty"`
	Metadata     json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
	Success      *bool           `gorm:"default:true;index:idx_audit_success" json:"success"`
	ErrorMessage *string         `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time       `gorm:"default:CURRENT_TIMESTAMP;index:idx_audit_created_at" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}

// Audit action constants
const (
	AuditActionLoginSuccess    = "login_success"
	AuditActionLoginFailed     = "login_failed"
	AuditActionLogout          = "logout"
	AuditActionPasswordChanged = "password_changed"
	AuditActionStaffCreated    = "staff_created"
	AuditActionStaffDisabled   = "staff_disabled"
	AuditActionDeptCreated     = "department_created"
	AuditActionSessionCreated  = "session_created"
	AuditActionSessionExpired  = "session_expired"
	AuditActionReportExported  = "report_exported"
)

// AuditLogFilter represents filter criteria for audit log queries
type AuditLogFilter struct {
	ID            *uint
	StaffUserID   *uint
	Action        *string
	Success       *bool
	IPAddress     *string
	RequestID     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (a *AuditLog) IsFailed() bool {
	return a.Success != nil && !*a.Success
}

func (a *AuditLog) IsSecurityEvent() bool {
	securityActions := map[string]bool{
		AuditActionLoginSuccess:    true,
		AuditActionLoginFailed:     true,
		AuditActionPasswordChanged: true,
		AuditActionStaffDisabled:   true,
	}
	return securityActions[a.Action]
}
