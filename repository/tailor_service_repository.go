// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sartorhq/sartor/models"
	"gorm.io/gorm"
)

// TailorServiceRepositoryImpl implements TailorServiceRepository interface
type TailorServiceRepositoryImpl struct {
	*BaseRepository[models.TailorService, models.TailorServiceFilter]
}

// NewTailorServiceRepository creates a new tailor service repository
func NewTailorServiceRepository(db *gorm.DB) TailorServiceRepository {
	return &TailorServiceRepositoryImpl{
		BaseRepository: NewBaseRepository[models.TailorService, models.TailorServiceFilter](db),
	}
}

// ByUUID retrieves a service by public UUID
func (r *TailorServiceRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.TailorService, error) {
	services, err := r.ByFilter(ctx, models.TailorServiceFilter{UUID: &id}, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find service by uuid: %w", err)
	}
	if len(services) == 0 {
		return nil, nil
	}
	return services[0], nil
}

// ListByTailor retrieves all services offered by a tailor
func (r *TailorServiceRepositoryImpl) ListByTailor(ctx context.Context, tailorID uint, activeOnly bool) ([]*models.TailorService, error) {
	filter := models.TailorServiceFilter{TailorID: &tailorID}
	if activeOnly {
		active := true
		filter.IsActive = &active
	}
	return r.ByFilter(ctx, filter, "id ASC", 0, 0)
}

// ByFilter retrieves services based on filter criteria
func (r *TailorServiceRepositoryImpl) ByFilter(ctx context.Context, filter models.TailorServiceFilter, orderBy string, limit, offset int) ([]*models.TailorService, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.TailorService{}), filter)

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

	var services []*models.TailorService
	if err := query.Find(&services).Error; err != nil {
		return nil, fmt.Errorf("failed to find services by filter: %w", err)
	}

	return services, nil
}

// Count returns the number of services matching the filter
func (r *TailorServiceRepositoryImpl) Count(ctx context.Context, filter models.TailorServiceFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.TailorService{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count services: %w", err)
	}

	return count, nil
}

func (r *TailorServiceRepositoryImpl) applyFilter(query *gorm.DB, filter models.TailorServiceFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.TailorID != nil {
		query = query.Where("tailor_id = ?", *filter.TailorID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}
