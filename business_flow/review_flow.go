// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sartorhq/sartor/app/dto"
	"github.com/sartorhq/sartor/models"
	"github.com/sartorhq/sartor/repository"
	"github.com/sartorhq/sartor/utils"
	"gorm.io/gorm"
)

// ReviewFlow handles reviews of completed bookings
type ReviewFlow interface {
	CreateReview(ctx context.Context, customerID uint, request *dto.CreateReviewRequest, metadata *ClientMetadata) (*dto.ReviewDTO, error)
	ListTailorReviews(ctx context.Context, tailorUUID string, page, pageSize int) (*dto.ReviewListResponse, error)
}

// ReviewFlowImpl implements the review business flow
type ReviewFlowImpl struct {
	reviewRepo   repository.ReviewRepository
	bookingRepo  repository.BookingRepository
	tailorRepo   repository.TailorRepository
	customerRepo repository.CustomerRepository
	auditRepo    repository.AuditLogRepository
	db           *gorm.DB
}

// NewReviewFlow creates a new review flow instance
func NewReviewFlow(
	reviewRepo repository.ReviewRepository,
	bookingRepo repository.BookingRepository,
	tailorRepo repository.TailorRepository,
	customerRepo repository.CustomerRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) ReviewFlow {
	return &ReviewFlowImpl{
		reviewRepo:   reviewRepo,
		bookingRepo:  bookingRepo,
		tailorRepo:   tailorRepo,
		customerRepo: customerRepo,
		auditRepo:    auditRepo,
		db:           db,
	}
}

// CreateReview attaches a review to a completed booking. Each booking can be
// reviewed at most once; the tailor's rating aggregates are recomputed in the
// same transaction.
func (rf *ReviewFlowImpl) CreateReview(ctx context.Context, customerID uint, request *dto.CreateReviewRequest, metadata *ClientMetadata) (*dto.ReviewDTO, error) {
	bookingUUID, err := uuid.Parse(request.BookingUUID)
	if err != nil {
		return nil, NewBusinessError("BOOKING_NOT_FOUND", "Booking not found", ErrBookingNotFound)
	}

	var review *models.Review

	err = repository.WithTransaction(ctx, rf.db, func(ctx context.Context) error {
		booking, err := rf.bookingRepo.ByUUID(ctx, bookingUUID)
		if err != nil {
			return err
		}
		if booking == nil {
			return ErrBookingNotFound
		}
		if booking.CustomerID != customerID {
			return ErrBookingNotOwned
		}
		if booking.Status != models.BookingStatusCompleted {
			return ErrBookingNotCompleted
		}

		existing, err := rf.reviewRepo.ByBookingID(ctx, booking.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrReviewAlreadyExists
		}

		review = &models.Review{
			UUID:       uuid.New(),
			CustomerID: customerID,
			TailorID:   booking.TailorID,
			BookingID:  booking.ID,
			Rating:     request.Rating,
			Comment:    request.Comment,
			CreatedAt:  utils.UTCNow(),
		}

		if err := rf.reviewRepo.Save(ctx, review); err != nil {
			return err
		}

		avgRating, count, err := rf.reviewRepo.AggregateByTailor(ctx, booking.TailorID)
		if err != nil {
			return err
		}

		return rf.tailorRepo.UpdateRating(ctx, booking.TailorID, avgRating, count)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Review creation failed: %s", err.Error())
		_ = rf.logReviewAction(ctx, customerID, errMsg, false, &errMsg, metadata)

		switch {
		case IsBookingNotFound(err):
			return nil, NewBusinessError("BOOKING_NOT_FOUND", "Booking not found", err)
		case IsBookingNotOwned(err):
			return nil, NewBusinessError("REVIEW_ACCESS_DENIED", "Review access denied", err)
		case IsBookingNotCompleted(err):
			return nil, NewBusinessError("BOOKING_NOT_COMPLETED", "Only completed bookings can be reviewed", err)
		case IsReviewAlreadyExists(err):
			return nil, NewBusinessError("REVIEW_ALREADY_EXISTS", "Booking has already been reviewed", err)
		default:
			return nil, NewBusinessError("REVIEW_CREATION_FAILED", "Review creation failed", err)
		}
	}

	msg := fmt.Sprintf("Review %s created for tailor %d", review.UUID, review.TailorID)
	_ = rf.logReviewAction(ctx, customerID, msg, true, nil, metadata)

	customerName := ""
	if customer, err := rf.customerRepo.ByID(ctx, customerID); err == nil && customer != nil {
		customerName = customer.FullName()
	}

	result := ToReviewDTO(*review, customerName)
	return &result, nil
}

// ListTailorReviews returns a page of reviews for a tailor, newest first
func (rf *ReviewFlowImpl) ListTailorReviews(ctx context.Context, tailorUUID string, page, pageSize int) (*dto.ReviewListResponse, error) {
	id, err := uuid.Parse(tailorUUID)
	if err != nil {
		return nil, NewBusinessError("TAILOR_NOT_FOUND", "Tailor not found", ErrTailorNotFound)
	}

	page, pageSize, err = normalizePaging(page, pageSize)
	if err != nil {
		return nil, NewBusinessError("REVIEW_LIST_FAILED", "Review list failed", err)
	}

	tailor, err := rf.tailorRepo.ByUUID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("REVIEW_LIST_FAILED", "Review list failed", err)
	}
	if tailor == nil {
		return nil, NewBusinessError("TAILOR_NOT_FOUND", "Tailor not found", ErrTailorNotFound)
	}

	filter := models.ReviewFilter{TailorID: &tailor.ID}
	total, err := rf.reviewRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("REVIEW_LIST_FAILED", "Review list failed", err)
	}

	reviews, err := rf.reviewRepo.ListByTailor(ctx, tailor.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("REVIEW_LIST_FAILED", "Review list failed", err)
	}

	customerNames := make(map[uint]string)
	response := &dto.ReviewListResponse{
		Reviews:   make([]dto.ReviewDTO, 0, len(reviews)),
		AvgRating: tailor.AvgRating,
		Pagination: dto.PaginationDTO{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}

	for _, review := range reviews {
		name, ok := customerNames[review.CustomerID]
		if !ok {
			if customer, err := rf.customerRepo.ByID(ctx, review.CustomerID); err == nil && customer != nil {
				name = customer.FullName()
			}
			customerNames[review.CustomerID] = name
		}
		response.Reviews = append(response.Reviews, ToReviewDTO(*review, name))
	}

	return response, nil
}

func (rf *ReviewFlowImpl) logReviewAction(ctx context.Context, customerID uint, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		AccountID:    &customerID,
		AccountRole:  utils.ToPtr(models.RoleCustomer),
		Action:       models.AuditActionReviewCreated,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errMsg,
	}

	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return rf.auditRepo.Save(ctx, audit)
}
