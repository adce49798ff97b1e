// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sartorhq/sartor/models"
	"github.com/sartorhq/sartor/utils"
	"gorm.io/gorm"
)

// BookingRepositoryImpl implements BookingRepository interface
type BookingRepositoryImpl struct {
	*BaseRepository[models.Booking, models.BookingFilter]
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &BookingRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Booking, models.BookingFilter](db),
	}
}

// ByUUID retrieves a booking by public UUID
func (r *BookingRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	bookings, err := r.ByFilter(ctx, models.BookingFilter{UUID: &id}, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find booking by uuid: %w", err)
	}
	if len(bookings) == 0 {
		return nil, nil
	}
	return bookings[0], nil
}

// ListByCustomer retrieves bookings placed by a customer, newest first
func (r *BookingRepositoryImpl) ListByCustomer(ctx context.Context, customerID uint, limit, offset int) ([]*models.Booking, error) {
	return r.ByFilter(ctx, models.BookingFilter{CustomerID: &customerID}, "created_at DESC", limit, offset)
}

// ListByTailor retrieves bookings received by a tailor, newest first
func (r *BookingRepositoryImpl) ListByTailor(ctx context.Context, tailorID uint, limit, offset int) ([]*models.Booking, error) {
	return r.ByFilter(ctx, models.BookingFilter{TailorID: &tailorID}, "created_at DESC", limit, offset)
}

// ListDueForReminder retrieves confirmed bookings scheduled before the given
// horizon whose reminder has not been sent yet.
func (r *BookingRepositoryImpl) ListDueForReminder(ctx context.Context, horizon time.Time, limit int) ([]*models.Booking, error) {
	db := r.getDB(ctx)

	query := db.Model(&models.Booking{}).
		Where("status = ?", models.BookingStatusConfirmed).
		Where("reminder_sent_at IS NULL").
		Where("scheduled_at > ?", utils.UTCNow()).
		Where("scheduled_at <= ?", horizon).
		Order("scheduled_at ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	var bookings []*models.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to find bookings due for reminder: %w", err)
	}

	return bookings, nil
}

// MarkReminderSent sets the reminder timestamp on a booking
func (r *BookingRepositoryImpl) MarkReminderSent(ctx context.Context, bookingID uint) error {
	db := r.getDB(ctx)

	err := db.Model(&models.Booking{}).
		Where("id = ? AND reminder_sent_at IS NULL", bookingID).
		Updates(map[string]any{
			"reminder_sent_at": utils.UTCNow(),
			"updated_at":       utils.UTCNow(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}

	return nil
}

// ByFilter retrieves bookings based on filter criteria
func (r *BookingRepositoryImpl) ByFilter(ctx context.Context, filter models.BookingFilter, orderBy string, limit, offset int) ([]*models.Booking, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Booking{}), filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var bookings []*models.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to find bookings by filter: %w", err)
	}

	return bookings, nil
}

// Count returns the number of bookings matching the filter
func (r *BookingRepositoryImpl) Count(ctx context.Context, filter models.BookingFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Booking{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	return count, nil
}

func (r *BookingRepositoryImpl) applyFilter(query *gorm.DB, filter models.BookingFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.TailorID != nil {
		query = query.Where("tailor_id = ?", *filter.TailorID)
	}
	if filter.ServiceID != nil {
		query = query.Where("service_id = ?", *filter.ServiceID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ScheduledAfter != nil {
		query = query.Where("scheduled_at >= ?", *filter.ScheduledAfter)
	}
	if filter.ScheduledBefore != nil {
		query = query.Where("scheduled_at <= ?", *filter.ScheduledBefore)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return query
}
