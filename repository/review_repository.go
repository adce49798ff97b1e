// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/sartorhq/sartor/models"
	"gorm.io/gorm"
)

// ReviewRepositoryImpl implements ReviewRepository interface
type ReviewRepositoryImpl struct {
	*BaseRepository[models.Review, models.ReviewFilter]
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &ReviewRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Review, models.ReviewFilter](db),
	}
}

// ByBookingID retrieves the review attached to a booking, if any
func (r *ReviewRepositoryImpl) ByBookingID(ctx context.Context, bookingID uint) (*models.Review, error) {
	reviews, err := r.ByFilter(ctx, models.ReviewFilter{BookingID: &bookingID}, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find review by booking: %w", err)
	}
	if len(reviews) == 0 {
		return nil, nil
	}
	return reviews[0], nil
}

// ListByTailor retrieves reviews left for a tailor, newest first
func (r *ReviewRepositoryImpl) ListByTailor(ctx context.Context, tailorID uint, limit, offset int) ([]*models.Review, error) {
	return r.ByFilter(ctx, models.ReviewFilter{TailorID: &tailorID}, "created_at DESC", limit, offset)
}

// AggregateByTailor computes the average rating and review count for a tailor.
func (r *ReviewRepositoryImpl) AggregateByTailor(ctx context.Context, tailorID uint) (float64, int, error) {
	db := r.getDB(ctx)

	var result struct {
		AvgRating   float64
		ReviewCount int64
	}
	err := db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg_rating, COUNT(*) AS review_count").
		Where("tailor_id = ?", tailorID).
		Scan(&result).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate reviews: %w", err)
	}

	return result.AvgRating, int(result.ReviewCount), nil
}

// ByFilter retrieves reviews based on filter criteria
func (r *ReviewRepositoryImpl) ByFilter(ctx context.Context, filter models.ReviewFilter, orderBy string, limit, offset int) ([]*models.Review, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Review{}), filter)

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

	var reviews []*models.Review
	if err := query.Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to find reviews by filter: %w", err)
	}

	return reviews, nil
}

// Count returns the number of reviews matching the filter
func (r *ReviewRepositoryImpl) Count(ctx context.Context, filter models.ReviewFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Review{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	return count, nil
}

func (r *ReviewRepositoryImpl) applyFilter(query *gorm.DB, filter models.ReviewFilter) *gorm.DB {
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
	if filter.BookingID != nil {
		query = query.Where("booking_id = ?", *filter.BookingID)
	}
	if filter.MinRating != nil {
		query = query.Where("rating >= ?", *filter.MinRating)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return query
}
