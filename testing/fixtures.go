package testing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sartorhq/sartor/models"
	"github.com/sartorhq/sartor/utils"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTestPassword is the plaintext behind every fixture password hash
const DefaultTestPassword = "TestPass123"

// HashTestPassword hashes a plaintext password with a low bcrypt cost for speed
func HashTestPassword(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("failed to hash test password: %v", err))
	}
	return string(hash)
}

// NewTestTailor builds an active tailor account with a credential password
func NewTestTailor(email string) *models.Tailor {
	return &models.Tailor{
		UUID:            uuid.New(),
		FirstName:       "Dariush",
		LastName:        "Kazemi",
		Email:           email,
		PasswordHash:    utils.ToPtr(HashTestPassword(DefaultTestPassword)),
		ShopName:        "Kazemi Atelier",
		City:            "Tehran",
		Specialties:     []string{"suits", "shirts"},
		ExperienceYears: 8,
		IsVerified:      utils.ToPtr(true),
		IsActive:        utils.ToPtr(true),
		CreatedAt:       utils.UTCNow(),
		UpdatedAt:       utils.UTCNow(),
	}
}

// NewTestCustomer builds an active customer account with a credential password
func NewTestCustomer(email string) *models.Customer {
	return &models.Customer{
		UUID:         uuid.New(),
		FirstName:    "Sara",
		LastName:     "Mohammadi",
		Email:        email,
		PasswordHash: utils.ToPtr(HashTestPassword(DefaultTestPassword)),
		City:         utils.ToPtr("Tehran"),
		IsActive:     utils.ToPtr(true),
		CreatedAt:    utils.UTCNow(),
		UpdatedAt:    utils.UTCNow(),
	}
}

// NewTestGoogleCustomer builds a customer provisioned through federated login:
// no password hash, linked subject id.
func NewTestGoogleCustomer(email, googleID string) *models.Customer {
	c := NewTestCustomer(email)
	c.PasswordHash = nil
	c.GoogleID = utils.ToPtr(googleID)
	return c
}

// NewTestService builds an active bookable service for the given tailor
func NewTestService(tailorID uint, name string, price int64) *models.TailorService {
	return &models.TailorService{
		UUID:         uuid.New(),
		TailorID:     tailorID,
		Name:         name,
		Price:        price,
		DurationDays: 7,
		IsActive:     utils.ToPtr(true),
		CreatedAt:    utils.UTCNow(),
		UpdatedAt:    utils.UTCNow(),
	}
}

// NewTestBooking builds a booking in the given status, scheduled a week out
func NewTestBooking(customerID, tailorID, serviceID uint, status string) *models.Booking {
	b := &models.Booking{
		UUID:        uuid.New(),
		CustomerID:  customerID,
		TailorID:    tailorID,
		ServiceID:   serviceID,
		Status:      status,
		ScheduledAt: utils.UTCNow().Add(7 * 24 * time.Hour),
		Price:       2_500_000,
		CreatedAt:   utils.UTCNow(),
		UpdatedAt:   utils.UTCNow(),
	}
	if status == models.BookingStatusCompleted {
		b.CompletedAt = utils.UTCNowPtr()
	}
	if status == models.BookingStatusCancelled {
		b.CancelledAt = utils.UTCNowPtr()
	}
	return b
}

// NewTestPreset builds a measurement preset owned by the given tailor
func NewTestPreset(tailorID uint, name string) *models.MeasurementPreset {
	return &models.MeasurementPreset{
		UUID:     uuid.New(),
		TailorID: tailorID,
		Name:     name,
		Measurements: models.MeasurementMap{
			"chest":    102,
			"waist":    88,
			"shoulder": 46,
		},
		CreatedAt: utils.UTCNow(),
		UpdatedAt: utils.UTCNow(),
	}
}

// NewTestReview builds a review for a completed booking
func NewTestReview(customerID, tailorID, bookingID uint, rating int) *models.Review {
	return &models.Review{
		UUID:       uuid.New(),
		CustomerID: customerID,
		TailorID:   tailorID,
		BookingID:  bookingID,
		Rating:     rating,
		CreatedAt:  utils.UTCNow(),
	}
}
