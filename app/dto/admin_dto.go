package dto

import "time"

// CreateDepartmentRequest carries data to create a department
type CreateDepartmentRequest struct {
	CompanyID   uint    `json:"-"`
	Name        string  `json:"name" validate:"required,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	HeadUserID  *uint   `json:"head_user_id,omitempty"`
}

// DepartmentDTO represents a department in API responses
type DepartmentDTO struct {
	ID          uint    `json:"id"`
	UUID        string  `json:"uuid"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	HeadUserID  *uint   `json:"head_user_id,omitempty"`
	IsActive    bool    `json:"is_active"`
	CreatedAt   string  `json:"created_at"`
}

// CreateDepartmentResponse returns the created department
type CreateDepartmentResponse struct {
	Message    string        `json:"message"`
	Department DepartmentDTO `json:"department"`
}

// ListDepartmentsResponse returns departments of a company
type ListDepartmentsResponse struct {
	Message string          `json:"message"`
	Items   []DepartmentDTO `json:"items"`
}

// CreateStaffRequest carries data to create a staff user
type CreateStaffRequest struct {
	CompanyID    uint   `json:"-"`
	CreatedBy    uint   `json:"-"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	FirstName    string `json:"first_name" validate:"required,max=60"`
	LastName     string `json:"last_name" validate:"required,max=60"`
	Role         string `json:"role" validate:"required,oneof=super_admin admin dept_officer"`
	DepartmentID *uint  `json:"department_id,omitempty"`
}

// CreateStaffResponse returns the created staff user
type CreateStaffResponse struct {
	Message string   `json:"message"`
	Staff   StaffDTO `json:"staff"`
}

// ListStaffRequest filters staff listings
type ListStaffRequest struct {
	CompanyID    uint    `json:"-"`
	Role         *string `json:"role,omitempty"`
	DepartmentID *uint   `json:"department_id,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
	Page         uint    `json:"page,omitempty"`
	PageSize     uint    `json:"page_size,omitempty"`
}

// ListStaffResponse returns staff rows
type ListStaffResponse struct {
	Message string     `json:"message"`
	Items   []StaffDTO `json:"items"`
}

// DisableStaffRequest deactivates a staff account
type DisableStaffRequest struct {
	CompanyID   uint `json:"-"`
	StaffID     uint `json:"-"`
	PerformedBy uint `json:"-"`
}

// DisableStaffResponse confirms deactivation
type DisableStaffResponse struct {
	Message string `json:"message"`
}

// DashboardStatsResponse returns aggregate counters for the admin dashboard
type DashboardStatsResponse struct {
	Message              string           `json:"message"`
	GrievancesByStatus   map[string]int64 `json:"grievances_by_status"`
	AppointmentsByStatus map[string]int64 `json:"appointments_by_status"`
	TotalGrievances      int64            `json:"total_grievances"`
	TotalAppointments    int64            `json:"total_appointments"`
	GeneratedAt          string           `json:"generated_at"`
	CacheHit             bool             `json:"cache_hit"`
}

// ExportGrievancesRequest filters the grievance report export.
// The response body is an xlsx file.
type ExportGrievancesRequest struct {
	CompanyID   uint       `json:"-"`
	PerformedBy uint       `json:"-"`
	Status      *string    `json:"status,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}
