// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sartorhq/sartor/models"
	"github.com/sartorhq/sartor/utils"
	"gorm.io/gorm"
)

// TailorRepositoryImpl implements TailorRepository interface
type TailorRepositoryImpl struct {
	*BaseRepository[models.Tailor, models.TailorFilter]
}

// NewTailorRepository creates a new tailor repository
func NewTailorRepository(db *gorm.DB) TailorRepository {
	return &TailorRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Tailor, models.TailorFilter](db),
	}
}

// ByEmail retrieves a tailor by email address
func (r *TailorRepositoryImpl) ByEmail(ctx context.Context, email string) (*models.Tailor, error) {
	tailors, err := r.ByFilter(ctx, models.TailorFilter{Email: &email}, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find tailor by email: %w", err)
	}
	if len(tailors) == 0 {
		return nil, nil
	}
	return tailors[0], nil
}

// ByUUID retrieves a tailor by public UUID
func (r *TailorRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.Tailor, error) {
	tailors, err := r.ByFilter(ctx, models.TailorFilter{UUID: &id}, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find tailor by uuid: %w", err)
	}
	if len(tailors) == 0 {
		return nil, nil
	}
	return tailors[0], nil
}

// ByGoogleID retrieves a tailor by linked provider subject id
func (r *TailorRepositoryImpl) ByGoogleID(ctx context.Context, googleID string) (*models.Tailor, error) {
	tailors, err := r.ByFilter(ctx, models.TailorFilter{GoogleID: &googleID}, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find tailor by google id: %w", err)
	}
	if len(tailors) == 0 {
		return nil, nil
	}
	return tailors[0], nil
}

// UpdateGoogleID links a provider subject id to the tailor. The WHERE clause
// keeps the write idempotent: an already-linked account is never overwritten.
func (r *TailorRepositoryImpl) UpdateGoogleID(ctx context.Context, tailorID uint, googleID string) error {
	db := r.getDB(ctx)
	err := db.Model(&models.Tailor{}).
		Where("id = ? AND google_id IS NULL", tailorID).
		Updates(map[string]any{"google_id": googleID, "updated_at": utils.UTCNow()}).Error
	if err != nil {
		return fmt.Errorf("failed to update tailor google id: %w", err)
	}
	return nil
}

// UpdateRating stores the recomputed review aggregates for a tailor.
func (r *TailorRepositoryImpl) UpdateRating(ctx context.Context, tailorID uint, avgRating float64, reviewCount int) error {
	db := r.getDB(ctx)
	err := db.Model(&models.Tailor{}).
		Where("id = ?", tailorID).
		Updates(map[string]any{
			"avg_rating":   avgRating,
			"review_count": reviewCount,
			"updated_at":   utils.UTCNow(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update tailor rating: %w", err)
	}
	return nil
}

// ByFilter retrieves tailors based on filter criteria
func (r *TailorRepositoryImpl) ByFilter(ctx context.Context, filter models.TailorFilter, orderBy string, limit, offset int) ([]*models.Tailor, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Tailor{}), filter)

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

	var tailors []*models.Tailor
	if err := query.Find(&tailors).Error; err != nil {
		return nil, fmt.Errorf("failed to find tailors by filter: %w", err)
	}

	return tailors, nil
}

// Count returns the number of tailors matching the filter
func (r *TailorRepositoryImpl) Count(ctx context.Context, filter models.TailorFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Tailor{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count tailors: %w", err)
	}

	return count, nil
}

func (r *TailorRepositoryImpl) applyFilter(query *gorm.DB, filter models.TailorFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Email != nil {
		query = query.Where("email = ?", *filter.Email)
	}
	if filter.GoogleID != nil {
		query = query.Where("google_id = ?", *filter.GoogleID)
	}
	if filter.City != nil {
		query = query.Where("city = ?", *filter.City)
	}
	if filter.Specialty != nil {
		query = query.Where("? = ANY(specialties)", *filter.Specialty)
	}
	if filter.Query != nil {
		pattern := "%" + *filter.Query + "%"
		query = query.Where(
			"shop_name ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ? OR bio ILIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if filter.IsVerified != nil {
		query = query.Where("is_verified = ?", *filter.IsVerified)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return query
}
