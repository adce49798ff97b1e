// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/sartorhq/sartor/app/dto"
	businessflow "github.com/sartorhq/sartor/business_flow"
	"github.com/sartorhq/sartor/models"
)

// BookingHandlerInterface defines the contract for booking handlers
type BookingHandlerInterface interface {
	CreateBooking(c fiber.Ctx) error
	ListBookings(c fiber.Ctx) error
	UpdateBookingStatus(c fiber.Ctx) error
	ExportBookings(c fiber.Ctx) error
}

// BookingHandler handles booking-related HTTP requests
type BookingHandler struct {
	bookingFlow businessflow.BookingFlow
	validator   *validator.Validate
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingFlow businessflow.BookingFlow) *BookingHandler {
	return &BookingHandler{
		bookingFlow: bookingFlow,
		validator:   validator.New(),
	}
}

func (h *BookingHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *BookingHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateBooking places a booking for the authenticated customer
func (h *BookingHandler) CreateBooking(c fiber.Ctx) error {
	if accountRole(c) != models.RoleCustomer {
		return h.ErrorResponse(c, fiber.StatusForbidden, "Only customers can place bookings", "FORBIDDEN", nil)
	}

	var req dto.CreateBookingRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.bookingFlow.CreateBooking(h.createRequestContext(c), accountID(c), &req, metadata)
	if err != nil {
		if businessflow.IsTailorNotFound(err) || businessflow.IsServiceNotFound(err) || businessflow.IsServiceInactive(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Booking target not found", "BOOKING_TARGET_NOT_FOUND", nil)
		}
		if businessflow.IsScheduleTimeInPast(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Scheduled time must be in the future", "VALIDATION_ERROR", nil)
		}

		log.Println("Booking creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Booking creation failed", "BOOKING_CREATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Booking created", result)
}

// ListBookings lists the bookings of the authenticated account; the side of
// the booking returned depends on the resolved role.
func (h *BookingHandler) ListBookings(c fiber.Ctx) error {
	var result *dto.BookingListResponse
	var err error

	switch accountRole(c) {
	case models.RoleCustomer:
		result, err = h.bookingFlow.ListCustomerBookings(h.createRequestContext(c), accountID(c), queryInt(c, "page"), queryInt(c, "page_size"))
	case models.RoleTailor:
		result, err = h.bookingFlow.ListTailorBookings(h.createRequestContext(c), accountID(c), queryInt(c, "page"), queryInt(c, "page_size"))
	default:
		return h.ErrorResponse(c, fiber.StatusForbidden, "Unknown role", "FORBIDDEN", nil)
	}

	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination", "VALIDATION_ERROR", nil)
		}

		log.Println("Booking list failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Booking list failed", "BOOKING_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Bookings retrieved", result)
}

// UpdateBookingStatus moves a booking along its lifecycle
func (h *BookingHandler) UpdateBookingStatus(c fiber.Ctx) error {
	var req dto.UpdateBookingStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.bookingFlow.UpdateBookingStatus(h.createRequestContext(c), accountRole(c), accountID(c), c.Params("uuid"), &req, metadata)
	if err != nil {
		if businessflow.IsBookingNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Booking not found", "BOOKING_NOT_FOUND", nil)
		}
		if businessflow.IsBookingAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Booking access denied", "BOOKING_ACCESS_DENIED", nil)
		}
		if businessflow.IsInvalidStatusTransition(err) || businessflow.IsBookingAlreadyTerminal(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Invalid booking status transition", "INVALID_STATUS_TRANSITION", nil)
		}

		log.Println("Booking update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Booking update failed", "BOOKING_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Booking updated", result)
}

// ExportBookings streams the tailor's bookings as an xlsx workbook
func (h *BookingHandler) ExportBookings(c fiber.Ctx) error {
	if accountRole(c) != models.RoleTailor {
		return h.ErrorResponse(c, fiber.StatusForbidden, "Only tailors can export bookings", "FORBIDDEN", nil)
	}

	filename, content, err := h.bookingFlow.ExportTailorBookings(h.createRequestContext(c), accountID(c))
	if err != nil {
		log.Println("Booking export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Booking export failed", "BOOKING_EXPORT_FAILED", nil)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(content)
}

func (h *BookingHandler) createRequestContext(c fiber.Ctx) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, "request_id", c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "cancel_func", cancel)

	return ctx
}
