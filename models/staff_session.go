package models

import (
	"encoding/json"
	"time"

	"github.com/civicmitra/seva-backend/utils"
	"github.com/google/uuid"
)

type StaffSession struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CorrelationID uuid.UUID       `gorm:"type:uuid;not null;index:idx_staff_sessions_correlation_id" json:"correlation_id"` // Groups related session records
	StaffUserID   uint            `gorm:"not null;index:idx_staff_sessions_staff_user_id" json:"staff_user_id"`
	StaffUser     StaffUser       `gorm:"foreignKey:StaffUserID;references:ID" json:"staff_user,omitempty"`
	SessionToken  string          `gorm:"size:255;not null;uniqueIndex:idx_staff_sessions_session_token" json:"-"` // Never serialize token
	RefreshToken  *string         `gorm:"size:255;uniqueIndex:idx_staff_sessions_refresh_token" json:"-"`          // Never serialize refresh token
	DeviceInfo    json.RawMessage `gorm:"type:jsonb" json:"device_info,omitempty"`
	IPAddress     *string         `gorm:"type:inet;index:idx_staff_sessions_ip_address" json:"ip_address,omitempty"`
	UserAgent     *string         `gorm:"type:text" json:"user_agent,omitempty"`
	IsActive      *bool           `gorm:"default:true;index:idx_staff_sessions_is_active" json:"is_active"`
	CreatedAt     time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	LastAccessed  time.Time       `gorm:"column:last_accessed_at;default:CURRENT_TIMESTAMP;index:idx_staff_sessions_last_accessed" json:"last_accessed_at"`
	ExpiresAt     time.Time       `gorm:"not null;index:idx_staff_sessions_expires_at" json:"expires_at"`
}

func (StaffSession) TableName() string {
	return "staff_sessions"
}

// StaffSessionFilter represents filter criteria for session queries
type StaffSessionFilter struct {
	ID            *uint
	CorrelationID *uuid.UUID
	StaffUserID   *uint
	IsActive      *bool
	IPAddress     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	ExpiresAfter  *time.Time
	ExpiresBefore *time.Time
}

func (s *StaffSession) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

func (s *StaffSession) IsValid() bool {
	return utils.IsTrue(s.IsActive) && !s.IsExpired()
}
