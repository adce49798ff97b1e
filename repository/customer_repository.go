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

// CustomerRepositoryImpl implements CustomerRepository interface
type CustomerRepositoryImpl struct {
	*BaseRepository[models.Customer, models.CustomerFilter]
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &CustomerRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Customer, models.CustomerFilter](db),
	}
}

// ByEmail retrieves a customer by email address
func (r *CustomerRepositoryImpl) ByEmail(ctx context.Context, email string) (*models.Customer, error) {
	customers, err := r.ByFilter(ctx, models.CustomerFilter{Email: &email}, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find customer by email: %w", err)
	}
	if len(customers) == 0 {
		return nil, nil
	}
	return customers[0], nil
}

// ByUUID retrieves a customer by public UUID
func (r *CustomerRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	customers, err := r.ByFilter(ctx, models.CustomerFilter{UUID: &id}, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find customer by uuid: %w", err)
	}
	if len(customers) == 0 {
		return nil, nil
	}
	return customers[0], nil
}

// ByGoogleID retrieves a customer by linked provider subject id
func (r *CustomerRepositoryImpl) ByGoogleID(ctx context.Context, googleID string) (*models.Customer, error) {
	customers, err := r.ByFilter(ctx, models.CustomerFilter{GoogleID: &googleID}, "", 1, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to find customer by google id: %w", err)
	}
	if len(customers) == 0 {
		return nil, nil
	}
	return customers[0], nil
}

// UpdateGoogleID links a provider subject id to the customer. The WHERE clause
// keeps the write idempotent: an already-linked account is never overwritten.
func (r *CustomerRepositoryImpl) UpdateGoogleID(ctx context.Context, customerID uint, googleID string) error {
	db := r.getDB(ctx)
	err := db.Model(&models.Customer{}).
		Where("id = ? AND google_id IS NULL", customerID).
		Updates(map[string]any{"google_id": googleID, "updated_at": utils.UTCNow()}).Error
	if err != nil {
		return fmt.Errorf("failed to update customer google id: %w", err)
	}
	return nil
}

// UpdateProfilePicture backfills a profile picture only when none is set.
func (r *CustomerRepositoryImpl) UpdateProfilePicture(ctx context.Context, customerID uint, pictureURL string) error {
	db := r.getDB(ctx)
	err := db.Model(&models.Customer{}).
		Where("id = ? AND (profile_picture IS NULL OR profile_picture = '')", customerID).
		Updates(map[string]any{"profile_picture": pictureURL, "updated_at": utils.UTCNow()}).Error
	if err != nil {
		return fmt.Errorf("failed to update customer profile picture: %w", err)
	}
	return nil
}

// ByFilter retrieves customers based on filter criteria
func (r *CustomerRepositoryImpl) ByFilter(ctx context.Context, filter models.CustomerFilter, orderBy string, limit, offset int) ([]*models.Customer, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Customer{}), filter)

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

	var customers []*models.Customer
	if err := query.Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to find customers by filter: %w", err)
	}

	return customers, nil
}

// Count returns the number of customers matching the filter
func (r *CustomerRepositoryImpl) Count(ctx context.Context, filter models.CustomerFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Customer{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}

	return count, nil
}

func (r *CustomerRepositoryImpl) applyFilter(query *gorm.DB, filter models.CustomerFilter) *gorm.DB {
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
