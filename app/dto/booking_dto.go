// Package dto contains Data Transfer Objects for API request and response structures
package dto

import "time"

// CreateBookingRequest represents the payload for placing a booking
type CreateBookingRequest struct {
	TailorUUID  string    `json:"tailor_uuid" validate:"required,uuid4"`
	ServiceUUID string    `json:"service_uuid" validate:"required,uuid4"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Notes       *string   `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// UpdateBookingStatusRequest represents the payload for moving a booking forward
type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed in_progress completed cancelled"`
}

// BookingDTO represents a booking in API responses
type BookingDTO struct {
	UUID        string     `json:"uuid"`
	Status      string     `json:"status"`
	ServiceName string     `json:"service_name,omitempty"`
	Price       int64      `json:"price"`
	Currency    string     `json:"currency" example:"TMN"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	Notes       *string    `json:"notes,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   string     `json:"created_at"`
}

// BookingListResponse represents a page of bookings
type BookingListResponse struct {
	Bookings   []BookingDTO  `json:"bookings"`
	Pagination PaginationDTO `json:"pagination"`
}
