// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/sartorhq/sartor/app/dto"
	"github.com/sartorhq/sartor/models"
	"github.com/sartorhq/sartor/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToAuthCustomerDTO converts a customer model to AuthAccountDTO for authentication responses
func ToAuthCustomerDTO(customer models.Customer) dto.AuthAccountDTO {
	return dto.AuthAccountDTO{
		ID:             customer.ID,
		UUID:           customer.UUID.String(),
		Role:           models.RoleCustomer,
		Email:          customer.Email,
		FirstName:      customer.FirstName,
		LastName:       customer.LastName,
		ProfilePicture: customer.ProfilePicture,
		IsActive:       customer.IsActive,
		CreatedAt:      customer.CreatedAt.Format(time.RFC3339),
	}
}

// ToAuthTailorDTO converts a tailor model to AuthAccountDTO for authentication responses
func ToAuthTailorDTO(tailor models.Tailor) dto.AuthAccountDTO {
	return dto.AuthAccountDTO{
		ID:             tailor.ID,
		UUID:           tailor.UUID.String(),
		Role:           models.RoleTailor,
		Email:          tailor.Email,
		FirstName:      tailor.FirstName,
		LastName:       tailor.LastName,
		ProfilePicture: tailor.ProfilePicture,
		IsActive:       tailor.IsActive,
		CreatedAt:      tailor.CreatedAt.Format(time.RFC3339),
	}
}

// ToSessionDTO builds the session payload for a freshly issued access token
func ToSessionDTO(accessToken string) dto.SessionDTO {
	return dto.SessionDTO{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   utils.AccessTokenTTLSeconds,
	}
}

// ToTailorSummaryDTO converts a tailor model to its directory entry
func ToTailorSummaryDTO(tailor models.Tailor) dto.TailorSummaryDTO {
	return dto.TailorSummaryDTO{
		UUID:            tailor.UUID.String(),
		ShopName:        tailor.ShopName,
		FullName:        tailor.FullName(),
		City:            tailor.City,
		Specialties:     tailor.Specialties,
		ExperienceYears: tailor.ExperienceYears,
		AvgRating:       tailor.AvgRating,
		ReviewCount:     tailor.ReviewCount,
		ProfilePicture:  tailor.ProfilePicture,
		IsVerified:      tailor.IsVerified,
	}
}

// ToTailorServiceDTO converts a tailor service model to its API representation
func ToTailorServiceDTO(service models.TailorService) dto.TailorServiceDTO {
	return dto.TailorServiceDTO{
		UUID:         service.UUID.String(),
		Name:         service.Name,
		Description:  service.Description,
		Price:        service.Price,
		Currency:     utils.TomanCurrency,
		DurationDays: service.DurationDays,
		IsActive:     service.IsActive,
	}
}

// ToBookingDTO converts a booking model to its API representation
func ToBookingDTO(booking models.Booking, serviceName string) dto.BookingDTO {
	return dto.BookingDTO{
		UUID:        booking.UUID.String(),
		Status:      booking.Status,
		ServiceName: serviceName,
		Price:       booking.Price,
		Currency:    utils.TomanCurrency,
		ScheduledAt: booking.ScheduledAt,
		Notes:       booking.Notes,
		CompletedAt: booking.CompletedAt,
		CancelledAt: booking.CancelledAt,
		CreatedAt:   booking.CreatedAt.Format(time.RFC3339),
	}
}

// ToPresetDTO converts a measurement preset model to its API representation
func ToPresetDTO(preset models.MeasurementPreset) dto.PresetDTO {
	return dto.PresetDTO{
		UUID:         preset.UUID.String(),
		Name:         preset.Name,
		Measurements: preset.Measurements,
		Notes:        preset.Notes,
		CreatedAt:    preset.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    preset.UpdatedAt.Format(time.RFC3339),
	}
}

// ToReviewDTO converts a review model to its API representation
func ToReviewDTO(review models.Review, customerName string) dto.ReviewDTO {
	return dto.ReviewDTO{
		UUID:         review.UUID.String(),
		Rating:       review.Rating,
		Comment:      review.Comment,
		CustomerName: customerName,
		CreatedAt:    review.CreatedAt.Format(time.RFC3339),
	}
}
