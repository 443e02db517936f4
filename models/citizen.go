package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Citizen is a member of the public interacting with a company, usually
// created on the first inbound WhatsApp message.
type Citizen struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;uniqueIndex:uk_citizens_uuid;not null;default:gen_random_uuid()" json:"uuid"`
	CompanyID uint      `gorm:"not null;index:idx_citizens_company_id;uniqueIndex:uk_citizens_company_phone" json:"company_id"`
	Company   *Company  `gorm:"foreignKey:CompanyID;references:ID;constraint:OnDelete:CASCADE" json:"company,omitempty"`

	// Phone in E.164 format; unique per company, the chatbot's lookup key
	Phone   string  `gorm:"size:20;not null;uniqueIndex:uk_citizens_company_phone" json:"phone"`
	Name    *string `gorm:"size:255" json:"name,omitempty"`
	Email   *string `gorm:"size:255" json:"email,omitempty"`
	Address *string `gorm:"type:text" json:"address,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Citizen) TableName() string { return "citizens" }

// BeforeCreate ensures the UUID is set
func (c *Citizen) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	return nil
}

// CitizenFilter represents filter criteria for citizen queries
type CitizenFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	CompanyID     *uint
	Phone         *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
