// Package models contains domain entities and business models for the tailor marketplace
package models

import (
	"time"

	"github.com/google/uuid"
)

// Booking status constants
const (
	BookingStatusPending    = "pending"
	BookingStatusConfirmed  = "confirmed"
	BookingStatusInProgress = "in_progress"
	BookingStatusCompleted  = "completed"
	BookingStatusCancelled  = "cancelled"
)

type Booking struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_bookings_uuid" json:"uuid"`

	CustomerID uint      `gorm:"not null;index:idx_bookings_customer_id" json:"customer_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID;references:ID" json:"customer,omitempty"`

	TailorID uint    `gorm:"not null;index:idx_bookings_tailor_id" json:"tailor_id"`
	Tailor   *Tailor `gorm:"foreignKey:TailorID;references:ID" json:"tailor,omitempty"`

	ServiceID uint           `gorm:"not null;index:idx_bookings_service_id" json:"service_id"`
	Service   *TailorService `gorm:"foreignKey:ServiceID;references:ID" json:"service,omitempty"`

	Status string `gorm:"size:20;not null;default:'pending';index:idx_bookings_status" json:"status"`

	ScheduledAt time.Time `gorm:"not null;index:idx_bookings_scheduled_at" json:"scheduled_at"`
	Notes       *string   `gorm:"type:text" json:"notes,omitempty"`

	// Price is snapshotted from the service at booking time so later price
	// changes do not affect existing bookings.
	Price int64 `gorm:"not null" json:"price"`

	// ReminderSentAt marks that the upcoming-appointment reminder went out,
	// so the scheduler never notifies twice.
	ReminderSentAt *time.Time `json:"reminder_sent_at,omitempty"`

	CreatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_bookings_created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

// IsTerminal reports whether no further status transitions are allowed.
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusCompleted || b.Status == BookingStatusCancelled
}

// BookingFilter represents filter criteria for booking queries
type BookingFilter struct {
	ID              *uint
	UUID            *uuid.UUID
	CustomerID      *uint
	TailorID        *uint
	ServiceID       *uint
	Status          *string
	ScheduledAfter  *time.Time
	ScheduledBefore *time.Time
	CreatedAfter    *time.Time
	CreatedBefore   *time.Time
}
