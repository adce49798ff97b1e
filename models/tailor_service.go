// Package models contains domain entities and business models for the tailor marketplace
package models

import (
	"time"

	"github.com/google/uuid"
)

// TailorService is a service a tailor offers in the marketplace (e.g. a suit
// fitting or a custom shirt), bookable by customers.
type TailorService struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_tailor_services_uuid" json:"uuid"`

	TailorID uint    `gorm:"not null;index:idx_tailor_services_tailor_id" json:"tailor_id"`
	Tailor   *Tailor `gorm:"foreignKey:TailorID;references:ID" json:"-"`

	Name        string  `gorm:"size:150;not null" json:"name"`
	Description *string `gorm:"type:text" json:"description,omitempty"`

	// Price in Toman.
	Price        int64 `gorm:"not null" json:"price"`
	DurationDays int   `gorm:"default:7" json:"duration_days"`

	IsActive *bool `gorm:"default:true;index:idx_tailor_services_is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (TailorService) TableName() string {
	return "tailor_services"
}

// TailorServiceFilter represents filter criteria for tailor service queries
type TailorServiceFilter struct {
	ID       *uint
	UUID     *uuid.UUID
	TailorID *uint
	IsActive *bool
}
