// Package dto contains Data Transfer Objects for API request and response structures
package dto

// CustomerProfileDTO represents the authenticated customer's profile
type CustomerProfileDTO struct {
	UUID           string  `json:"uuid"`
	Email          string  `json:"email"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Phone          *string `json:"phone,omitempty"`
	City           *string `json:"city,omitempty"`
	Address        *string `json:"address,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// UpdateCustomerProfileRequest represents the payload for updating a customer profile
type UpdateCustomerProfileRequest struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,min=2,max=100"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	City      *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Address   *string `json:"address,omitempty" validate:"omitempty,max=255"`
}

// TailorProfileDTO represents the authenticated tailor's own profile
type TailorProfileDTO struct {
	UUID            string   `json:"uuid"`
	Email           string   `json:"email"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	ShopName        string   `json:"shop_name"`
	Bio             *string  `json:"bio,omitempty"`
	City            string   `json:"city"`
	Address         *string  `json:"address,omitempty"`
	PostalCode      *string  `json:"postal_code,omitempty"`
	Phone           *string  `json:"phone,omitempty"`
	ProfilePicture  *string  `json:"profile_picture,omitempty"`
	Specialties     []string `json:"specialties,omitempty"`
	ExperienceYears int      `json:"experience_years"`
	AvgRating       float64  `json:"avg_rating"`
	ReviewCount     int      `json:"review_count"`
	IsVerified      *bool    `json:"is_verified"`
	CreatedAt       string   `json:"created_at"`
}

// UpdateTailorProfileRequest represents the payload for updating a tailor profile
type UpdateTailorProfileRequest struct {
	FirstName       *string  `json:"first_name,omitempty" validate:"omitempty,min=2,max=100"`
	LastName        *string  `json:"last_name,omitempty" validate:"omitempty,min=2,max=100"`
	ShopName        *string  `json:"shop_name,omitempty" validate:"omitempty,min=2,max=150"`
	Bio             *string  `json:"bio,omitempty" validate:"omitempty,max=5000"`
	City            *string  `json:"city,omitempty" validate:"omitempty,max=100"`
	Address         *string  `json:"address,omitempty" validate:"omitempty,max=255"`
	PostalCode      *string  `json:"postal_code,omitempty" validate:"omitempty,len=10"`
	Phone           *string  `json:"phone,omitempty" validate:"omitempty,max=20"`
	Specialties     []string `json:"specialties,omitempty" validate:"omitempty,max=20,dive,min=2,max=100"`
	ExperienceYears *int     `json:"experience_years,omitempty" validate:"omitempty,min=0,max=80"`
}
