// Package dto contains Data Transfer Objects for API request and response structures
package dto

// CreateReviewRequest represents the payload for reviewing a completed booking
type CreateReviewRequest struct {
	BookingUUID string  `json:"booking_uuid" validate:"required,uuid4"`
	Rating      int     `json:"rating" validate:"required,min=1,max=5"`
	Comment     *string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

// ReviewDTO represents a review in API responses
type ReviewDTO struct {
	UUID         string  `json:"uuid"`
	Rating       int     `json:"rating"`
	Comment      *string `json:"comment,omitempty"`
	CustomerName string  `json:"customer_name,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

// ReviewListResponse represents a page of reviews for a tailor
type ReviewListResponse struct {
	Reviews    []ReviewDTO   `json:"reviews"`
	AvgRating  float64       `json:"avg_rating"`
	Pagination PaginationDTO `json:"pagination"`
}
