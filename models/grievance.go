package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Grievance status constants. Transitions are restricted to the
// grievanceTransitions map below; CLOSED and REJECTED are terminal.
const (
	GrievanceStatusPending    = "PENDING"
	GrievanceStatusAssigned   = "ASSIGNED"
	GrievanceStatusInProgress = "IN_PROGRESS"
	GrievanceStatusResolved   = "RESOLVED"
	GrievanceStatusClosed     = "CLOSED"
	GrievanceStatusRejected   = "REJECTED"
)

// Grievance priority constants
const (
	GrievancePriorityLow    = "low"
	GrievancePriorityMedium = "medium"
	GrievancePriorityHigh   = "high"
	GrievancePriorityUrgent = "urgent"
)

var grievanceTransitions = map[string][]string{
	GrievanceStatusPending:    {GrievanceStatusAssigned, GrievanceStatusRejected},
	GrievanceStatusAssigned:   {GrievanceStatusInProgress, GrievanceStatusRejected},
	GrievanceStatusInProgress: {GrievanceStatusResolved, GrievanceStatusRejected},
	GrievanceStatusResolved:   {GrievanceStatusClosed},
	GrievanceStatusClosed:     {},
	GrievanceStatusRejected:   {},
}

// IsValidGrievanceStatus reports whether s is a known grievance status.
func IsValidGrievanceStatus(s string) bool {
	_, ok := grievanceTransitions[s]
	return ok
}

// CanTransitionGrievance reports whether the status machine permits
// from -> to.
func CanTransitionGrievance(from, to string) bool {
	for _, next := range grievanceTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Grievance is a citizen complaint tracked through its lifecycle. The
// human-readable ReferenceID (GRV########) is issued by the sequence
// counter allocator at creation, never reused, never reformatted.
type Grievance struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID        uuid.UUID `gorm:"type:uuid;uniqueIndex:uk_grievances_uuid;not null;default:gen_random_uuid()" json:"uuid"`
	ReferenceID string    `gorm:"size:16;not null;uniqueIndex:uk_grievances_reference_id" json:"reference_id"`
	CompanyID   uint      `gorm:"not null;index:idx_grievances_company_id" json:"company_id"`
	Company     *Company  `gorm:"foreignKey:CompanyID;references:ID;constraint:OnDelete:CASCADE" json:"company,omitempty"`

	CitizenID uint     `gorm:"not null;index:idx_grievances_citizen_id" json:"citizen_id"`
	Citizen   *Citizen `gorm:"foreignKey:CitizenID;references:ID" json:"citizen,omitempty"`

	Subject     string         `gorm:"type:varchar(255);not null" json:"subject"`
	Description string         `gorm:"type:text;not null" json:"description"`
	Attachments pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"attachments"`
	Priority    string         `gorm:"size:10;not null;default:'medium'" json:"priority"`

	Status       string      `gorm:"type:grievance_status_enum;not null;default:'PENDING';index:idx_grievances_status" json:"status"`
	DepartmentID *uint       `gorm:"index:idx_grievances_department_id" json:"department_id,omitempty"`
	Department   *Department `gorm:"foreignKey:DepartmentID;references:ID" json:"department,omitempty"`
	AssignedToID *uint       `gorm:"index:idx_grievances_assigned_to_id" json:"assigned_to_id,omitempty"`
	AssignedTo   *StaffUser  `gorm:"foreignKey:AssignedToID;references:ID" json:"assigned_to,omitempty"`

	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_grievances_created_at" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Grievance) TableName() string { return "grievances" }

// BeforeCreate ensures the UUID is set
func (g *Grievance) BeforeCreate(tx *gorm.DB) error {
	if g.UUID == uuid.Nil {
		g.UUID = uuid.New()
	}
	return nil
}

// IsTerminal reports whether the grievance reached a terminal status.
func (g *Grievance) IsTerminal() bool {
	return len(grievanceTransitions[g.Status]) == 0 && IsValidGrievanceStatus(g.Status)
}

// GrievanceFilter represents filter criteria for grievance queries
type GrievanceFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	ReferenceID   *string
	CompanyID     *uint
	CitizenID     *uint
	Status        *string
	Priority      *string
	DepartmentID  *uint
	AssignedToID  *uint
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
