// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/sartorhq/sartor/app/dto"
	businessflow "github.com/sartorhq/sartor/business_flow"
)

// TailorHandlerInterface defines the contract for the public tailor directory handlers
type TailorHandlerInterface interface {
	Search(c fiber.Ctx) error
	GetTailor(c fiber.Ctx) error
	ListReviews(c fiber.Ctx) error
}

// TailorHandler handles public tailor directory HTTP requests
type TailorHandler struct {
	directoryFlow businessflow.TailorDirectoryFlow
	reviewFlow    businessflow.ReviewFlow
	validator     *validator.Validate
}

// NewTailorHandler creates a new tailor directory handler
func NewTailorHandler(directoryFlow businessflow.TailorDirectoryFlow, reviewFlow businessflow.ReviewFlow) *TailorHandler {
	return &TailorHandler{
		directoryFlow: directoryFlow,
		reviewFlow:    reviewFlow,
		validator:     validator.New(),
	}
}

func (h *TailorHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *TailorHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Search serves the public tailor directory with optional filters
func (h *TailorHandler) Search(c fiber.Ctx) error {
	req := dto.TailorSearchRequest{
		City:      c.Query("city"),
		Specialty: c.Query("specialty"),
		Query:     c.Query("q"),
		Page:      queryInt(c, "page"),
		PageSize:  queryInt(c, "page_size"),
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors(err))
	}

	result, err := h.directoryFlow.Search(h.createRequestContext(c), &req)
	if err != nil {
		log.Println("Tailor search failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Tailor search failed", "TAILOR_SEARCH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Tailors retrieved", result)
}

// GetTailor serves the full public profile of one tailor
func (h *TailorHandler) GetTailor(c fiber.Ctx) error {
	result, err := h.directoryFlow.GetTailor(h.createRequestContext(c), c.Params("uuid"))
	if err != nil {
		if businessflow.IsTailorNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Tailor not found", "TAILOR_NOT_FOUND", nil)
		}

		log.Println("Tailor lookup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Tailor lookup failed", "TAILOR_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Tailor retrieved", result)
}

// ListReviews serves the reviews left for one tailor
func (h *TailorHandler) ListReviews(c fiber.Ctx) error {
	result, err := h.reviewFlow.ListTailorReviews(h.createRequestContext(c), c.Params("uuid"), queryInt(c, "page"), queryInt(c, "page_size"))
	if err != nil {
		if businessflow.IsTailorNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Tailor not found", "TAILOR_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination", "VALIDATION_ERROR", nil)
		}

		log.Println("Review list failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Review list failed", "REVIEW_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Reviews retrieved", result)
}

func queryInt(c fiber.Ctx, key string) int {
	v, _ := strconv.Atoi(c.Query(key))
	return v
}

func (h *TailorHandler) createRequestContext(c fiber.Ctx) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, "request_id", c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "cancel_func", cancel)

	return ctx
}
