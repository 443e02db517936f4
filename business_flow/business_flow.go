// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/civicmitra/seva-backend/app/dto"
	"github.com/civicmitra/seva-backend/models"
	"github.com/civicmitra/seva-backend/repository"
	"github.com/civicmitra/seva-backend/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging and session tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	DeviceInfo map[string]string `json:"device_info,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		DeviceInfo: make(map[string]string),
		Additional: make(map[string]string),
	}
}

// AddDeviceInfo adds device information to the metadata
func (cm *ClientMetadata) AddDeviceInfo(key, value string) {
	if cm.DeviceInfo == nil {
		cm.DeviceInfo = make(map[string]string)
	}
	cm.DeviceInfo[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// SetSessionID sets the session ID
func (cm *ClientMetadata) SetSessionID(sessionID string) {
	cm.SessionID = sessionID
}

// ToStaffDTO converts a staff user model to StaffDTO for API responses
func ToStaffDTO(staff models.StaffUser) dto.StaffDTO {
	d := dto.StaffDTO{
		ID:           staff.ID,
		UUID:         staff.UUID.String(),
		Email:        staff.Email,
		FirstName:    staff.FirstName,
		LastName:     staff.LastName,
		Role:         staff.Role,
		CompanyID:    staff.CompanyID,
		DepartmentID: staff.DepartmentID,
		IsActive:     utils.IsTrue(staff.IsActive),
		CreatedAt:    staff.CreatedAt.Format(time.RFC3339),
	}
	if staff.LastLoginAt != nil {
		d.LastLoginAt = utils.ToPtr(staff.LastLoginAt.Format(time.RFC3339))
	}
	return d
}

func ToStaffSessionDTO(session models.StaffSession) dto.StaffSessionDTO {
	refresh := ""
	if session.RefreshToken != nil {
		refresh = *session.RefreshToken
	}
	return dto.StaffSessionDTO{
		SessionToken: session.SessionToken,
		RefreshToken: refresh,
		ExpiresIn:    int(time.Until(session.ExpiresAt).Seconds()),
		TokenType:    "Bearer",
		CreatedAt:    session.CreatedAt.Format(time.RFC3339),
	}
}

// ToTimelineEventDTO converts a timeline event to its API representation.
// The details payload is decoded into a generic map for the client.
func ToTimelineEventDTO(event models.TimelineEvent) dto.TimelineEventDTO {
	details := map[string]any{}
	if len(event.Details) > 0 {
		_ = json.Unmarshal(event.Details, &details)
	}
	return dto.TimelineEventDTO{
		ID:          int64(event.ID),
		Action:      event.Action,
		PerformedBy: event.PerformedByID,
		Details:     details,
		CreatedAt:   event.CreatedAt.Format(time.RFC3339),
	}
}

// getCompany loads a company and checks it is usable
func getCompany(ctx context.Context, repo repository.CompanyRepository, companyID uint) (*models.Company, error) {
	company, err := repo.ByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, ErrCompanyNotFound
	}
	if !utils.IsTrue(company.IsActive) {
		return nil, ErrCompanyInactive
	}
	return company, nil
}

// getStaff loads a staff user and checks the account is usable
func getStaff(ctx context.Context, repo repository.StaffUserRepository, staffID uint) (*models.StaffUser, error) {
	staff, err := repo.ByID(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if staff == nil {
		return nil, ErrStaffNotFound
	}
	if !staff.IsUsable() {
		return nil, ErrAccountInactive
	}
	return staff, nil
}

// normalizePagination clamps page/page size to sane bounds and returns
// the SQL limit and offset.
func normalizePagination(page, pageSize uint) (limit, offset int) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 || pageSize > 100 {
		pageSize = 20
	}
	return int(pageSize), int((page - 1) * pageSize)
}

// validateDateRange rejects inverted inclusive date bounds
func validateDateRange(start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		return ErrStartDateAfterEndDate
	}
	return nil
}
