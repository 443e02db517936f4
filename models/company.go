// Package models contains domain entities and business models for the citizen services system
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company represents a tenant government body (municipality, district
// office, utility board) that owns departments, staff and citizen records.
type Company struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex:uk_companies_uuid;not null;default:gen_random_uuid()" json:"uuid"`
	Name string    `gorm:"size:255;not null" json:"name"`
	Slug string    `gorm:"size:64;not null;uniqueIndex:uk_companies_slug" json:"slug"`

	// WhatsApp Cloud API phone number id used by the chatbot for this tenant
	WhatsAppPhoneNumberID *string `gorm:"column:whatsapp_phone_number_id;size:64;index:idx_companies_wa_phone_id" json:"whatsapp_phone_number_id,omitempty"`
	ContactEmail          *string `gorm:"size:255" json:"contact_email,omitempty"`

	IsActive  *bool     `gorm:"default:true;index:idx_companies_is_active" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Company) TableName() string { return "companies" }

// BeforeCreate ensures the UUID is set
func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	return nil
}

// CompanyFilter represents filter criteria for company queries
type CompanyFilter struct {
	ID                    *uint
	UUID                  *uuid.UUID
	Slug                  *string
	WhatsAppPhoneNumberID *string
	IsActive              *bool
	CreatedAfter          *time.Time
	CreatedBefore         *time.Time
}
