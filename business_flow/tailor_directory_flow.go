// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sartorhq/sartor/app/dto"
	"github.com/sartorhq/sartor/models"
	"github.com/sartorhq/sartor/repository"
	"github.com/sartorhq/sartor/utils"
)

// directoryCacheTTL bounds staleness of cached directory pages.
const directoryCacheTTL = 5 * time.Minute

// TailorDirectoryFlow serves the public tailor directory
type TailorDirectoryFlow interface {
	Search(ctx context.Context, request *dto.TailorSearchRequest) (*dto.TailorDirectoryResponse, error)
	GetTailor(ctx context.Context, tailorUUID string) (*dto.TailorDetailDTO, error)
	InvalidateDirectoryCache(ctx context.Context)
}

// TailorDirectoryFlowImpl implements the tailor directory business flow
type TailorDirectoryFlowImpl struct {
	tailorRepo  repository.TailorRepository
	serviceRepo repository.TailorServiceRepository
	redisClient *redis.Client
}

// NewTailorDirectoryFlow creates a new tailor directory flow instance.
// A nil redis client disables caching.
func NewTailorDirectoryFlow(
	tailorRepo repository.TailorRepository,
	serviceRepo repository.TailorServiceRepository,
	redisClient *redis.Client,
) TailorDirectoryFlow {
	return &TailorDirectoryFlowImpl{
		tailorRepo:  tailorRepo,
		serviceRepo: serviceRepo,
		redisClient: redisClient,
	}
}

// Search returns a page of the tailor directory matching the given filters.
// Unfiltered pages are served from cache when available.
func (tf *TailorDirectoryFlowImpl) Search(ctx context.Context, request *dto.TailorSearchRequest) (*dto.TailorDirectoryResponse, error) {
	page := request.Page
	if page < 1 {
		page = 1
	}
	pageSize := request.PageSize
	if pageSize < 1 {
		pageSize = utils.DefaultPageSize
	}
	if pageSize > utils.MaxPageSize {
		pageSize = utils.MaxPageSize
	}

	cacheable := request.City == "" && request.Specialty == "" && request.Query == ""
	cacheKey := fmt.Sprintf("%s:%d:%d", utils.TailorDirectoryCacheKey, page, pageSize)

	if cacheable && tf.redisClient != nil {
		if b, err := tf.redisClient.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached dto.TailorDirectoryResponse
			if err := json.Unmarshal(b, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	filter := models.TailorFilter{IsActive: utils.ToPtr(true)}
	if request.City != "" {
		filter.City = &request.City
	}
	if request.Specialty != "" {
		filter.Specialty = &request.Specialty
	}
	if request.Query != "" {
		filter.Query = &request.Query
	}

	total, err := tf.tailorRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("TAILOR_SEARCH_FAILED", "Tailor search failed", err)
	}

	tailors, err := tf.tailorRepo.ByFilter(ctx, filter, "avg_rating DESC, review_count DESC, id DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("TAILOR_SEARCH_FAILED", "Tailor search failed", err)
	}

	response := &dto.TailorDirectoryResponse{
		Tailors: make([]dto.TailorSummaryDTO, 0, len(tailors)),
		Pagination: dto.PaginationDTO{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}
	for _, tailor := range tailors {
		response.Tailors = append(response.Tailors, ToTailorSummaryDTO(*tailor))
	}

	if cacheable && tf.redisClient != nil {
		if b, err := json.Marshal(response); err == nil {
			_ = tf.redisClient.Set(ctx, cacheKey, b, directoryCacheTTL).Err()
		}
	}

	return response, nil
}

// GetTailor returns the full public profile of an active tailor, including
// its active services.
func (tf *TailorDirectoryFlowImpl) GetTailor(ctx context.Context, tailorUUID string) (*dto.TailorDetailDTO, error) {
	id, err := uuid.Parse(tailorUUID)
	if err != nil {
		return nil, NewBusinessError("TAILOR_NOT_FOUND", "Tailor not found", ErrTailorNotFound)
	}

	tailor, err := tf.tailorRepo.ByUUID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("TAILOR_LOOKUP_FAILED", "Tailor lookup failed", err)
	}
	if tailor == nil || !utils.IsTrue(tailor.IsActive) {
		return nil, NewBusinessError("TAILOR_NOT_FOUND", "Tailor not found", ErrTailorNotFound)
	}

	services, err := tf.serviceRepo.ListByTailor(ctx, tailor.ID, true)
	if err != nil {
		return nil, NewBusinessError("TAILOR_LOOKUP_FAILED", "Tailor lookup failed", err)
	}

	detail := &dto.TailorDetailDTO{
		TailorSummaryDTO: ToTailorSummaryDTO(*tailor),
		Bio:              tailor.Bio,
		Address:          tailor.Address,
		Phone:            tailor.Phone,
		Services:         make([]dto.TailorServiceDTO, 0, len(services)),
	}
	for _, service := range services {
		detail.Services = append(detail.Services, ToTailorServiceDTO(*service))
	}

	return detail, nil
}

// InvalidateDirectoryCache drops all cached directory pages. Called after a
// tailor profile change that affects directory listings.
func (tf *TailorDirectoryFlowImpl) InvalidateDirectoryCache(ctx context.Context) {
	if tf.redisClient == nil {
		return
	}

	iter := tf.redisClient.Scan(ctx, 0, utils.TailorDirectoryCacheKey+":*", 100).Iterator()
	for iter.Next(ctx) {
		_ = tf.redisClient.Del(ctx, iter.Val()).Err()
	}
}
