package models

import (
	"time"

	"github.com/civicmitra/seva-backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Staff role constants
const (
	RoleSuperAdmin  = "super_admin"
	RoleAdmin       = "admin"
	RoleDeptOfficer = "dept_officer"
)

// IsValidStaffRole reports whether s is a known staff role.
func IsValidStaffRole(s string) bool {
	switch s {
	case RoleSuperAdmin, RoleAdmin, RoleDeptOfficer:
		return true
	}
	return false
}

// StaffUser is an employee of a company who works grievances and
// appointments through the admin console.
type StaffUser struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;uniqueIndex:uk_staff_users_uuid;not null;default:gen_random_uuid()" json:"uuid"`
	CompanyID uint      `gorm:"not null;index:idx_staff_users_company_id" json:"company_id"`
	Company   *Company  `gorm:"foreignKey:CompanyID;references:ID;constraint:OnDelete:CASCADE" json:"company,omitempty"`

	FirstName    string  `gorm:"size:100;not null" json:"first_name"`
	LastName     string  `gorm:"size:100;not null" json:"last_name"`
	Email        string  `gorm:"size:255;not null;uniqueIndex:uk_staff_users_email" json:"email"`
	Mobile       *string `gorm:"size:20;index:idx_staff_users_mobile" json:"mobile,omitempty"`
	PasswordHash string  `gorm:"size:255;not null" json:"-"`

	Role         string      `gorm:"type:staff_role_enum;not null;index:idx_staff_users_role" json:"role"`
	DepartmentID *uint       `gorm:"index:idx_staff_users_department_id" json:"department_id,omitempty"`
	Department   *Department `gorm:"foreignKey:DepartmentID;references:ID" json:"department,omitempty"`

	IsActive    *bool      `gorm:"default:true;index:idx_staff_users_is_active" json:"is_active"`
	LastLoginAt *time.Time `gorm:"index:idx_staff_users_last_login_at" json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (StaffUser) TableName() string { return "staff_users" }

// BeforeCreate ensures the UUID is set
func (u *StaffUser) BeforeCreate(tx *gorm.DB) error {
	if u.UUID == uuid.Nil {
		u.UUID = uuid.New()
	}
	return nil
}

// FullName returns the display name used in timeline details and notifications
func (u *StaffUser) FullName() string {
	return u.FirstName + " " + u.LastName
}

// CanManageStaff reports whether the role may create or deactivate staff
func (u *StaffUser) CanManageStaff() bool {
	return u.Role == RoleSuperAdmin || u.Role == RoleAdmin
}

// IsUsable reports whether the account may authenticate
func (u *StaffUser) IsUsable() bool {
	return utils.IsTrue(u.IsActive)
}

// StaffUserFilter represents filter criteria for staff user queries
type StaffUserFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	CompanyID     *uint
	Email         *string
	Mobile        *string
	Role          *string
	DepartmentID  *uint
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
