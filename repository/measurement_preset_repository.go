// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sartorhq/sartor/models"
	"gorm.io/gorm"
)

// MeasurementPresetRepositoryImpl implements MeasurementPresetRepository interface
type MeasurementPresetRepositoryImpl struct {
	*BaseRepository[models.MeasurementPreset, models.MeasurementPresetFilter]
}

// NewMeasurementPresetRepository creates a new measurement preset repository
func NewMeasurementPresetRepository(db *gorm.DB) MeasurementPresetRepository {
	return &MeasurementPresetRepositoryImpl{
		BaseRepository: NewBaseRepository[models.MeasurementPreset, models.MeasurementPresetFilter](db),
	}
}

// ByUUID retrieves a preset by public UUID
func (r *MeasurementPresetRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.MeasurementPreset, error) {
	presets, err := r.ByFilter(ctx, models.MeasurementPresetFilter{UUID: &id}, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find preset by uuid: %w", err)
	}
	if len(presets) == 0 {
		return nil, nil
	}
	return presets[0], nil
}

// ListByTailor retrieves all presets owned by a tailor
func (r *MeasurementPresetRepositoryImpl) ListByTailor(ctx context.Context, tailorID uint) ([]*models.MeasurementPreset, error) {
	return r.ByFilter(ctx, models.MeasurementPresetFilter{TailorID: &tailorID}, "name ASC", 0, 0)
}

// DeleteByID removes a preset
func (r *MeasurementPresetRepositoryImpl) DeleteByID(ctx context.Context, presetID uint) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Delete(&models.MeasurementPreset{}, presetID).Error
	if err != nil {
		return fmt.Errorf("failed to delete preset: %w", err)
	}
	return nil
}

// ByFilter retrieves presets based on filter criteria
func (r *MeasurementPresetRepositoryImpl) ByFilter(ctx context.Context, filter models.MeasurementPresetFilter, orderBy string, limit, offset int) ([]*models.MeasurementPreset, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.MeasurementPreset{}), filter)

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

	var presets []*models.MeasurementPreset
	if err := query.Find(&presets).Error; err != nil {
		return nil, fmt.Errorf("failed to find presets by filter: %w", err)
	}

	return presets, nil
}

// Count returns the number of presets matching the filter
func (r *MeasurementPresetRepositoryImpl) Count(ctx context.Context, filter models.MeasurementPresetFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.MeasurementPreset{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count presets: %w", err)
	}

	return count, nil
}

func (r *MeasurementPresetRepositoryImpl) applyFilter(query *gorm.DB, filter models.MeasurementPresetFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.TailorID != nil {
		query = query.Where("tailor_id = ?", *filter.TailorID)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	return query
}
