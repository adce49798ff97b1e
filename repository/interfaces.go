// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sartorhq/sartor/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
}

// CustomerRepository defines operations for customer-role accounts
type CustomerRepository interface {
	Repository[models.Customer, models.CustomerFilter]
	ByEmail(ctx context.Context, email string) (*models.Customer, error)
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.Customer, error)
	ByGoogleID(ctx context.Context, googleID string) (*models.Customer, error)
	UpdateGoogleID(ctx context.Context, customerID uint, googleID string) error
	UpdateProfilePicture(ctx context.Context, customerID uint, pictureURL string) error
}

// TailorRepository defines operations for tailor-role accounts
type TailorRepository interface {
	Repository[models.Tailor, models.TailorFilter]
	ByEmail(ctx context.Context, email string) (*models.Tailor, error)
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.Tailor, error)
	ByGoogleID(ctx context.Context, googleID string) (*models.Tailor, error)
	UpdateGoogleID(ctx context.Context, tailorID uint, googleID string) error
	UpdateRating(ctx context.Context, tailorID uint, avgRating float64, reviewCount int) error
}

// TailorServiceRepository defines operations for services offered by tailors
type TailorServiceRepository interface {
	Repository[models.TailorService, models.TailorServiceFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.TailorService, error)
	ListByTailor(ctx context.Context, tailorID uint, activeOnly bool) ([]*models.TailorService, error)
}

// BookingRepository defines operations for bookings
type BookingRepository interface {
	Repository[models.Booking, models.BookingFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.Booking, error)
	ListByCustomer(ctx context.Context, customerID uint, limit, offset int) ([]*models.Booking, error)
	ListByTailor(ctx context.Context, tailorID uint, limit, offset int) ([]*models.Booking, error)
	ListDueForReminder(ctx context.Context, horizon time.Time, limit int) ([]*models.Booking, error)
	MarkReminderSent(ctx context.Context, bookingID uint) error
}

// MeasurementPresetRepository defines operations for measurement presets
type MeasurementPresetRepository interface {
	Repository[models.MeasurementPreset, models.MeasurementPresetFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.MeasurementPreset, error)
	ListByTailor(ctx context.Context, tailorID uint) ([]*models.MeasurementPreset, error)
	DeleteByID(ctx context.Context, presetID uint) error
}

// ReviewRepository defines operations for reviews
type ReviewRepository interface {
	Repository[models.Review, models.ReviewFilter]
	ByBookingID(ctx context.Context, bookingID uint) (*models.Review, error)
	ListByTailor(ctx context.Context, tailorID uint, limit, offset int) ([]*models.Review, error)
	AggregateByTailor(ctx context.Context, tailorID uint) (avgRating float64, count int, err error)
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByAccount(ctx context.Context, role string, accountID uint, limit, offset int) ([]*models.AuditLog, error)
}
