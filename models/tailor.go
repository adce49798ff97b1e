// Package models contains domain entities and business models for the tailor marketplace
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Tailor struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_tailors_uuid" json:"uuid"`

	FirstName string `gorm:"size:100;not null" json:"first_name"`
	LastName  string `gorm:"size:100;not null" json:"last_name"`

	Email string `gorm:"size:255;not null;uniqueIndex:uk_tailors_email" json:"email"`

	// PasswordHash is nil for accounts provisioned through federated login.
	PasswordHash *string `gorm:"size:255" json:"-"`

	// GoogleID is the federated provider subject id, linked on first use and
	// never overwritten afterwards.
	GoogleID *string `gorm:"size:255;uniqueIndex:uk_tailors_google_id" json:"-"`

	// Shop profile
	ShopName        string         `gorm:"size:150;not null" json:"shop_name"`
	Bio             *string        `gorm:"type:text" json:"bio,omitempty"`
	City            string         `gorm:"size:100;not null;index:idx_tailors_city" json:"city"`
	Address         *string        `gorm:"size:255" json:"address,omitempty"`
	PostalCode      *string        `gorm:"size:10" json:"postal_code,omitempty"`
	Phone           *string        `gorm:"size:20" json:"phone,omitempty"`
	ProfilePicture  *string        `gorm:"size:512" json:"profile_picture,omitempty"`
	Specialties     pq.StringArray `gorm:"type:text[]" json:"specialties,omitempty"`
	ExperienceYears int            `gorm:"default:0" json:"experience_years"`

	// Review aggregates, maintained by the review flow.
	AvgRating   float64 `gorm:"default:0" json:"avg_rating"`
	ReviewCount int     `gorm:"default:0" json:"review_count"`

	IsVerified *bool `gorm:"default:false;index:idx_tailors_is_verified" json:"is_verified"`
	IsActive   *bool `gorm:"default:true;index:idx_tailors_is_active" json:"is_active"`

	CreatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_tailors_created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	// Relations
	Services []TailorService     `gorm:"foreignKey:TailorID" json:"services,omitempty"`
	Bookings []Booking           `gorm:"foreignKey:TailorID" json:"-"`
	Reviews  []Review            `gorm:"foreignKey:TailorID" json:"-"`
	Presets  []MeasurementPreset `gorm:"foreignKey:TailorID" json:"-"`
}

func (Tailor) TableName() string {
	return "tailors"
}

// HasPassword reports whether credential login is possible for this account.
func (t *Tailor) HasPassword() bool {
	return t.PasswordHash != nil && *t.PasswordHash != ""
}

func (t *Tailor) FullName() string {
	return t.FirstName + " " + t.LastName
}

// TailorFilter represents filter criteria for tailor queries
type TailorFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Email         *string
	GoogleID      *string
	City          *string
	Specialty     *string
	Query         *string
	IsVerified    *bool
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
