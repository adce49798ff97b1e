// Package dto contains Data Transfer Objects for API request and response structures
package dto

// TailorSearchRequest represents query parameters for the tailor directory
type TailorSearchRequest struct {
	City      string `query:"city" validate:"omitempty,max=100"`
	Specialty string `query:"specialty" validate:"omitempty,max=100"`
	Query     string `query:"q" validate:"omitempty,max=255"`
	Page      int    `query:"page" validate:"omitempty,min=1"`
	PageSize  int    `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// TailorSummaryDTO represents a directory entry for a tailor
type TailorSummaryDTO struct {
	UUID            string   `json:"uuid"`
	ShopName        string   `json:"shop_name"`
	FullName        string   `json:"full_name"`
	City            string   `json:"city"`
	Specialties     []string `json:"specialties,omitempty"`
	ExperienceYears int      `json:"experience_years"`
	AvgRating       float64  `json:"avg_rating"`
	ReviewCount     int      `json:"review_count"`
	ProfilePicture  *string  `json:"profile_picture,omitempty"`
	IsVerified      *bool    `json:"is_verified"`
}

// TailorDetailDTO represents the full public profile of a tailor
type TailorDetailDTO struct {
	TailorSummaryDTO
	Bio      *string            `json:"bio,omitempty"`
	Address  *string            `json:"address,omitempty"`
	Phone    *string            `json:"phone,omitempty"`
	Services []TailorServiceDTO `json:"services"`
}

// TailorServiceDTO represents a service offered by a tailor
type TailorServiceDTO struct {
	UUID         string  `json:"uuid"`
	Name         string  `json:"name"`
	Description  *string `json:"description,omitempty"`
	Price        int64   `json:"price"`
	Currency     string  `json:"currency" example:"TMN"`
	DurationDays int     `json:"duration_days"`
	IsActive     *bool   `json:"is_active"`
}

// TailorDirectoryResponse represents a page of the tailor directory
type TailorDirectoryResponse struct {
	Tailors    []TailorSummaryDTO `json:"tailors"`
	Pagination PaginationDTO      `json:"pagination"`
}

// CreateTailorServiceRequest represents the payload for adding a service
type CreateTailorServiceRequest struct {
	Name         string  `json:"name" validate:"required,min=2,max=150"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Price        int64   `json:"price" validate:"required,min=1000"`
	DurationDays int     `json:"duration_days" validate:"required,min=1,max=365"`
}

// UpdateTailorServiceRequest represents the payload for updating a service
type UpdateTailorServiceRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=2,max=150"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Price        *int64  `json:"price,omitempty" validate:"omitempty,min=1000"`
	DurationDays *int    `json:"duration_days,omitempty" validate:"omitempty,min=1,max=365"`
	IsActive     *bool   `json:"is_active,omitempty"`
}
