// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/sartorhq/sartor/app/dto"
	businessflow "github.com/sartorhq/sartor/business_flow"
	"github.com/sartorhq/sartor/models"
)

// ReviewHandlerInterface defines the contract for review handlers
type ReviewHandlerInterface interface {
	CreateReview(c fiber.Ctx) error
}

// ReviewHandler handles review-related HTTP requests
type ReviewHandler struct {
	reviewFlow businessflow.ReviewFlow
	validator  *validator.Validate
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewFlow businessflow.ReviewFlow) *ReviewHandler {
	return &ReviewHandler{
		reviewFlow: reviewFlow,
		validator:  validator.New(),
	}
}

func (h *ReviewHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ReviewHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateReview attaches a review to a completed booking of the authenticated customer
func (h *ReviewHandler) CreateReview(c fiber.Ctx) error {
	if accountRole(c) != models.RoleCustomer {
		return h.ErrorResponse(c, fiber.StatusForbidden, "Only customers can leave reviews", "FORBIDDEN", nil)
	}

	var req dto.CreateReviewRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.reviewFlow.CreateReview(h.createRequestContext(c), accountID(c), &req, metadata)
	if err != nil {
		if businessflow.IsBookingNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Booking not found", "BOOKING_NOT_FOUND", nil)
		}
		if businessflow.IsBookingNotOwned(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Review access denied", "REVIEW_ACCESS_DENIED", nil)
		}
		if businessflow.IsBookingNotCompleted(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Only completed bookings can be reviewed", "BOOKING_NOT_COMPLETED", nil)
		}
		if businessflow.IsReviewAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Booking has already been reviewed", "REVIEW_ALREADY_EXISTS", nil)
		}

		log.Println("Review creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Review creation failed", "REVIEW_CREATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Review created", result)
}

func (h *ReviewHandler) createRequestContext(c fiber.Ctx) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, "request_id", c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "cancel_func", cancel)

	return ctx
}
