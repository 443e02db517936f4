package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Appointment status constants. PENDING is initial; COMPLETED, CANCELLED
// and NO_SHOW are terminal. NO_SHOW is only reachable from CONFIRMED.
const (
	AppointmentStatusPending   = "PENDING"
	AppointmentStatusConfirmed = "CONFIRMED"
	AppointmentStatusCompleted = "COMPLETED"
	AppointmentStatusCancelled = "CANCELLED"
	AppointmentStatusNoShow    = "NO_SHOW"
)

var appointmentTransitions = map[string][]string{
	AppointmentStatusPending:   {AppointmentStatusConfirmed, AppointmentStatusCancelled},
	AppointmentStatusConfirmed: {AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow},
	AppointmentStatusCompleted: {},
	AppointmentStatusCancelled: {},
	AppointmentStatusNoShow:    {},
}

// IsValidAppointmentStatus reports whether s is a known appointment status.
func IsValidAppointmentStatus(s string) bool {
	_, ok := appointmentTransitions[s]
	return ok
}

// CanTransitionAppointment reports whether the status machine permits
// from -> to.
func CanTransitionAppointment(from, to string) bool {
	for _, next := range appointmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Appointment is a scheduled citizen visit. The ReferenceID (APT########)
// is issued by the sequence counter allocator at creation.
type Appointment struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID        uuid.UUID `gorm:"type:uuid;uniqueIndex:uk_appointments_uuid;not null;default:gen_random_uuid()" json:"uuid"`
	ReferenceID string    `gorm:"size:16;not null;uniqueIndex:uk_appointments_reference_id" json:"reference_id"`
	CompanyID   uint      `gorm:"not null;index:idx_appointments_company_id" json:"company_id"`
	Company     *Company  `gorm:"foreignKey:CompanyID;references:ID;constraint:OnDelete:CASCADE" json:"company,omitempty"`

	CitizenID uint     `gorm:"not null;index:idx_appointments_citizen_id" json:"citizen_id"`
	Citizen   *Citizen `gorm:"foreignKey:CitizenID;references:ID" json:"citizen,omitempty"`

	Purpose     string    `gorm:"type:varchar(255);not null" json:"purpose"`
	Notes       *string   `gorm:"type:text" json:"notes,omitempty"`
	ScheduledAt time.Time `gorm:"not null;index:idx_appointments_scheduled_at" json:"scheduled_at"`

	Status       string      `gorm:"type:appointment_status_enum;not null;default:'PENDING';index:idx_appointments_status" json:"status"`
	DepartmentID *uint       `gorm:"index:idx_appointments_department_id" json:"department_id,omitempty"`
	Department   *Department `gorm:"foreignKey:DepartmentID;references:ID" json:"department,omitempty"`
	AssignedToID *uint       `gorm:"index:idx_appointments_assigned_to_id" json:"assigned_to_id,omitempty"`
	AssignedTo   *StaffUser  `gorm:"foreignKey:AssignedToID;references:ID" json:"assigned_to,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_appointments_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Appointment) TableName() string { return "appointments" }

// BeforeCreate ensures the UUID is set
func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == uuid.Nil {
		a.UUID = uuid.New()
	}
	return nil
}

// IsTerminal reports whether the appointment reached a terminal status.
func (a *Appointment) IsTerminal() bool {
	return len(appointmentTransitions[a.Status]) == 0 && IsValidAppointmentStatus(a.Status)
}

// AppointmentFilter represents filter criteria for appointment queries
type AppointmentFilter struct {
	ID              *uint
	UUID            *uuid.UUID
	ReferenceID     *string
	CompanyID       *uint
	CitizenID       *uint
	Status          *string
	DepartmentID    *uint
	AssignedToID    *uint
	ScheduledAfter  *time.Time
	ScheduledBefore *time.Time
	CreatedAfter    *time.Time
	CreatedBefore   *time.Time
}
