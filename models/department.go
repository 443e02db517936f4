package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Department is a unit inside a company (sanitation, water supply,
// revenue, ...) that grievances and appointments are routed to.
type Department struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;uniqueIndex:uk_departments_uuid;not null;default:gen_random_uuid()" json:"uuid"`
	CompanyID uint      `gorm:"not null;index:idx_departments_company_id" json:"company_id"`
	Company   *Company  `gorm:"foreignKey:CompanyID;references:ID;constraint:OnDelete:CASCADE" json:"company,omitempty"`

	Name        string  `gorm:"size:255;not null" json:"name"`
	Description *string `gorm:"type:text" json:"description,omitempty"`

	// HeadUserID points at the staff user responsible for the department
	HeadUserID *uint      `gorm:"index:idx_departments_head_user_id" json:"head_user_id,omitempty"`
	HeadUser   *StaffUser `gorm:"foreignKey:HeadUserID;references:ID" json:"head_user,omitempty"`

	IsActive  *bool     `gorm:"default:true;index:idx_departments_is_active" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Department) TableName() string { return "departments" }

// BeforeCreate ensures the UUID is set
func (d *Department) BeforeCreate(tx *gorm.DB) error {
	if d.UUID == uuid.Nil {
		d.UUID = uuid.New()
	}
	return nil
}

// DepartmentFilter represents filter criteria for department queries
type DepartmentFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	CompanyID     *uint
	Name          *string
	HeadUserID    *uint
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
