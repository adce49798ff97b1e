// Package models contains domain entities and business models for the tailor marketplace
package models

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_customers_uuid" json:"uuid"`

	FirstName string `gorm:"size:100;not null" json:"first_name"`
	LastName  string `gorm:"size:100;not null" json:"last_name"`

	Email string `gorm:"size:255;not null;uniqueIndex:uk_customers_email" json:"email"`

	// PasswordHash is nil for accounts provisioned through federated login.
	PasswordHash *string `gorm:"size:255" json:"-"`

	// GoogleID is the federated provider subject id, linked on first use and
	// never overwritten afterwards.
	GoogleID *string `gorm:"size:255;uniqueIndex:uk_customers_google_id" json:"-"`

	Phone          *string `gorm:"size:20" json:"phone,omitempty"`
	City           *string `gorm:"size:100;index:idx_customers_city" json:"city,omitempty"`
	Address        *string `gorm:"size:255" json:"address,omitempty"`
	ProfilePicture *string `gorm:"size:512" json:"profile_picture,omitempty"`

	IsActive *bool `gorm:"default:true;index:idx_customers_is_active" json:"is_active"`

	CreatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_customers_created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	// Relations
	Bookings  []Booking           `gorm:"foreignKey:CustomerID" json:"-"`
	Reviews   []Review            `gorm:"foreignKey:CustomerID" json:"-"`
	Presets   []MeasurementPreset `gorm:"foreignKey:CustomerID" json:"-"`
	AuditLogs []AuditLog          `gorm:"foreignKey:AccountID" json:"-"`
}

func (Customer) TableName() string {
	return "customers"
}

// HasPassword reports whether credential login is possible for this account.
func (c *Customer) HasPassword() bool {
	return c.PasswordHash != nil && *c.PasswordHash != ""
}

func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// CustomerFilter represents filter criteria for customer queries
type CustomerFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Email         *string
	GoogleID      *string
	City          *string
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
