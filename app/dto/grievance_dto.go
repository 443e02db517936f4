package dto

import "time"

// CreateGrievanceRequest carries data to register a citizen grievance.
// Channel is one of: whatsapp, web, walk_in.
type CreateGrievanceRequest struct {
	CompanyID    uint     `json:"company_id" validate:"required"`
	CitizenPhone string   `json:"citizen_phone" validate:"required"`
	CitizenName  *string  `json:"citizen_name,omitempty"`
	Subject      string   `json:"subject" validate:"required,max=120"`
	Description  string   `json:"description" validate:"required,max=2000"`
	Channel      string   `json:"channel" validate:"required,oneof=whatsapp web walk_in"`
	Priority     *string  `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	DepartmentID *uint    `json:"department_id,omitempty"`
	Attachments  []string `json:"attachments,omitempty"`
}

// CreateGrievanceResponse returns the allocated reference ID and identifiers
type CreateGrievanceResponse struct {
	Message     string `json:"message"`
	ID          uint   `json:"id"`
	UUID        string `json:"uuid"`
	ReferenceID string `json:"reference_id"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

// AssignGrievanceRequest assigns a grievance to a staff officer
type AssignGrievanceRequest struct {
	ReferenceID string `json:"-"`
	AssigneeID  uint   `json:"assignee_id" validate:"required"`
	PerformedBy uint   `json:"-"`
}

// AssignGrievanceResponse confirms the assignment
type AssignGrievanceResponse struct {
	Message     string `json:"message"`
	ReferenceID string `json:"reference_id"`
	Status      string `json:"status"`
	AssigneeID  uint   `json:"assignee_id"`
}

// UpdateGrievanceStatusRequest moves a grievance to a new status
type UpdateGrievanceStatusRequest struct {
	ReferenceID string  `json:"-"`
	Status      string  `json:"status" validate:"required"`
	Remarks     *string `json:"remarks,omitempty" validate:"omitempty,max=500"`
	PerformedBy uint    `json:"-"`
}

// UpdateGrievanceStatusResponse confirms the transition
type UpdateGrievanceStatusResponse struct {
	Message     string `json:"message"`
	ReferenceID string `json:"reference_id"`
	Status      string `json:"status"`
}

// TransferGrievanceRequest moves a grievance to another department
type TransferGrievanceRequest struct {
	ReferenceID  string `json:"-"`
	DepartmentID uint   `json:"department_id" validate:"required"`
	PerformedBy  uint   `json:"-"`
}

// TransferGrievanceResponse confirms the transfer
type TransferGrievanceResponse struct {
	Message      string `json:"message"`
	ReferenceID  string `json:"reference_id"`
	DepartmentID uint   `json:"department_id"`
}

// GrievanceItem represents a grievance row in listings
type GrievanceItem struct {
	ID             uint    `json:"id"`
	UUID           string  `json:"uuid"`
	ReferenceID    string  `json:"reference_id"`
	Subject        string  `json:"subject"`
	Description    string  `json:"description"`
	Status         string  `json:"status"`
	Priority       string  `json:"priority"`
	CitizenPhone   string  `json:"citizen_phone"`
	CitizenName    *string `json:"citizen_name,omitempty"`
	DepartmentName *string `json:"department_name,omitempty"`
	AssigneeName   *string `json:"assignee_name,omitempty"`
	CreatedAt      string  `json:"created_at"`
	ResolvedAt     *string `json:"resolved_at,omitempty"`
}

// ListGrievancesRequest filters for listing grievances.
// StartDate/EndDate are inclusive bounds on creation time.
type ListGrievancesRequest struct {
	CompanyID    uint       `json:"-"`
	Status       *string    `json:"status,omitempty"`
	Priority     *string    `json:"priority,omitempty"`
	DepartmentID *uint      `json:"department_id,omitempty"`
	AssignedToID *uint      `json:"assigned_to_id,omitempty"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Page         uint       `json:"page,omitempty"`
	PageSize     uint       `json:"page_size,omitempty"`
}

// ListGrievancesResponse returns grievance rows
type ListGrievancesResponse struct {
	Message string          `json:"message"`
	Items   []GrievanceItem `json:"items"`
	Total   int64           `json:"total"`
}

// TimelineEventDTO represents one event in an entity's history
type TimelineEventDTO struct {
	ID          int64          `json:"id"`
	Action      string         `json:"action"`
	PerformedBy *uint          `json:"performed_by,omitempty"`
	Details     map[string]any `json:"details"`
	CreatedAt   string         `json:"created_at"`
}

// GetTimelineResponse returns the ordered event history for an entity
type GetTimelineResponse struct {
	Message     string             `json:"message"`
	EntityType  string             `json:"entity_type"`
	ReferenceID string             `json:"reference_id"`
	Events      []TimelineEventDTO `json:"events"`
}
