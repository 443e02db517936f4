package dto

import "time"

// CreateAppointmentRequest carries data to book a citizen appointment.
// Channel is one of: whatsapp, web, walk_in.
type CreateAppointmentRequest struct {
	CompanyID    uint      `json:"company_id" validate:"required"`
	CitizenPhone string    `json:"citizen_phone" validate:"required"`
	CitizenName  *string   `json:"citizen_name,omitempty"`
	ServiceName  string    `json:"service_name" validate:"required,max=120"`
	ScheduledAt  time.Time `json:"scheduled_at" validate:"required"`
	Channel      string    `json:"channel" validate:"required,oneof=whatsapp web walk_in"`
	DepartmentID *uint     `json:"department_id,omitempty"`
	Notes        *string   `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// CreateAppointmentResponse returns the allocated reference ID and identifiers
type CreateAppointmentResponse struct {
	Message     string `json:"message"`
	ID          uint   `json:"id"`
	UUID        string `json:"uuid"`
	ReferenceID string `json:"reference_id"`
	Status      string `json:"status"`
	ScheduledAt string `json:"scheduled_at"`
	CreatedAt   string `json:"created_at"`
}

// UpdateAppointmentStatusRequest moves an appointment to a new status
type UpdateAppointmentStatusRequest struct {
	ReferenceID string  `json:"-"`
	Status      string  `json:"status" validate:"required"`
	Remarks     *string `json:"remarks,omitempty" validate:"omitempty,max=500"`
	PerformedBy uint    `json:"-"`
}

// UpdateAppointmentStatusResponse confirms the transition
type UpdateAppointmentStatusResponse struct {
	Message     string `json:"message"`
	ReferenceID string `json:"reference_id"`
	Status      string `json:"status"`
}

// AssignAppointmentRequest assigns an appointment to a staff officer
type AssignAppointmentRequest struct {
	ReferenceID string `json:"-"`
	AssigneeID  uint   `json:"assignee_id" validate:"required"`
	PerformedBy uint   `json:"-"`
}

// AssignAppointmentResponse confirms the assignment
type AssignAppointmentResponse struct {
	Message     string `json:"message"`
	ReferenceID string `json:"reference_id"`
	AssigneeID  uint   `json:"assignee_id"`
}

// AppointmentItem represents an appointment row in listings
type AppointmentItem struct {
	ID             uint    `json:"id"`
	UUID           string  `json:"uuid"`
	ReferenceID    string  `json:"reference_id"`
	ServiceName    string  `json:"service_name"`
	Status         string  `json:"status"`
	CitizenPhone   string  `json:"citizen_phone"`
	CitizenName    *string `json:"citizen_name,omitempty"`
	DepartmentName *string `json:"department_name,omitempty"`
	AssigneeName   *string `json:"assignee_name,omitempty"`
	ScheduledAt    string  `json:"scheduled_at"`
	CreatedAt      string  `json:"created_at"`
}

// ListAppointmentsRequest filters for listing appointments.
// StartDate/EndDate are inclusive bounds on the scheduled time.
type ListAppointmentsRequest struct {
	CompanyID    uint       `json:"-"`
	Status       *string    `json:"status,omitempty"`
	DepartmentID *uint      `json:"department_id,omitempty"`
	AssignedToID *uint      `json:"assigned_to_id,omitempty"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Page         uint       `json:"page,omitempty"`
	PageSize     uint       `json:"page_size,omitempty"`
}

// ListAppointmentsResponse returns appointment rows
type ListAppointmentsResponse struct {
	Message string            `json:"message"`
	Items   []AppointmentItem `json:"items"`
	Total   int64             `json:"total"`
}
