// Package models contains domain entities and business models for the tailor marketplace
package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a customer rating of a completed booking. A booking can be
// reviewed at most once.
type Review struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_reviews_uuid" json:"uuid"`

	CustomerID uint      `gorm:"not null;index:idx_reviews_customer_id" json:"customer_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID;references:ID" json:"customer,omitempty"`

	TailorID uint    `gorm:"not null;index:idx_reviews_tailor_id" json:"tailor_id"`
	Tailor   *Tailor `gorm:"foreignKey:TailorID;references:ID" json:"-"`

	BookingID uint     `gorm:"not null;uniqueIndex:uk_reviews_booking_id" json:"booking_id"`
	Booking   *Booking `gorm:"foreignKey:BookingID;references:ID" json:"-"`

	Rating  int     `gorm:"not null" json:"rating"`
	Comment *string `gorm:"type:text" json:"comment,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_reviews_created_at" json:"created_at"`
}

func (Review) TableName() string {
	return "reviews"
}

// ReviewFilter represents filter criteria for review queries
type ReviewFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	CustomerID    *uint
	TailorID      *uint
	BookingID     *uint
	MinRating     *int
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
