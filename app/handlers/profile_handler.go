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

// ProfileHandlerInterface defines the contract for profile handlers
type ProfileHandlerInterface interface {
	GetProfile(c fiber.Ctx) error
	UpdateProfile(c fiber.Ctx) error
	CreateService(c fiber.Ctx) error
	UpdateService(c fiber.Ctx) error
	ListServices(c fiber.Ctx) error
}

// ProfileHandler handles account profile HTTP requests
type ProfileHandler struct {
	profileFlow businessflow.ProfileFlow
	validator   *validator.Validate
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileFlow businessflow.ProfileFlow) *ProfileHandler {
	return &ProfileHandler{
		profileFlow: profileFlow,
		validator:   validator.New(),
	}
}

func (h *ProfileHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ProfileHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// GetProfile returns the authenticated account's own profile
func (h *ProfileHandler) GetProfile(c fiber.Ctx) error {
	ctx := h.createRequestContext(c)

	switch accountRole(c) {
	case models.RoleTailor:
		result, err := h.profileFlow.GetTailorProfile(ctx, accountID(c))
		if err != nil {
			return h.profileError(c, err, "Profile lookup failed", "PROFILE_LOOKUP_FAILED")
		}
		return h.SuccessResponse(c, fiber.StatusOK, "Profile retrieved", result)
	case models.RoleCustomer:
		result, err := h.profileFlow.GetCustomerProfile(ctx, accountID(c))
		if err != nil {
			return h.profileError(c, err, "Profile lookup failed", "PROFILE_LOOKUP_FAILED")
		}
		return h.SuccessResponse(c, fiber.StatusOK, "Profile retrieved", result)
	default:
		return h.ErrorResponse(c, fiber.StatusForbidden, "Unknown role", "FORBIDDEN", nil)
	}
}

// UpdateProfile applies partial changes to the authenticated account's profile
func (h *ProfileHandler) UpdateProfile(c fiber.Ctx) error {
	ctx := h.createRequestContext(c)
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	switch accountRole(c) {
	case models.RoleTailor:
		var req dto.UpdateTailorProfileRequest
		if err := c.Bind().JSON(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
		if err := h.validator.Struct(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors(err))
		}

		result, err := h.profileFlow.UpdateTailorProfile(ctx, accountID(c), &req, metadata)
		if err != nil {
			return h.profileError(c, err, "Profile update failed", "PROFILE_UPDATE_FAILED")
		}
		return h.SuccessResponse(c, fiber.StatusOK, "Profile updated", result)

	case models.RoleCustomer:
		var req dto.UpdateCustomerProfileRequest
		if err := c.Bind().JSON(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
		if err := h.validator.Struct(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors(err))
		}

		result, err := h.profileFlow.UpdateCustomerProfile(ctx, accountID(c), &req, metadata)
		if err != nil {
			return h.profileError(c, err, "Profile update failed", "PROFILE_UPDATE_FAILED")
		}
		return h.SuccessResponse(c, fiber.StatusOK, "Profile updated", result)

	default:
		return h.ErrorResponse(c, fiber.StatusForbidden, "Unknown role", "FORBIDDEN", nil)
	}
}

// CreateService adds a service to the authenticated tailor's offering
func (h *ProfileHandler) CreateService(c fiber.Ctx) error {
	var req dto.CreateTailorServiceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors(err))
	}

	result, err := h.profileFlow.CreateService(h.createRequestContext(c), accountID(c), &req)
	if err != nil {
		log.Println("Service creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Service creation failed", "SERVICE_CREATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Service created", result)
}

// UpdateService applies partial changes to a service of the authenticated tailor
func (h *ProfileHandler) UpdateService(c fiber.Ctx) error {
	var req dto.UpdateTailorServiceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors(err))
	}

	result, err := h.profileFlow.UpdateService(h.createRequestContext(c), accountID(c), c.Params("uuid"), &req)
	if err != nil {
		if businessflow.IsServiceNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Service not found", "SERVICE_NOT_FOUND", nil)
		}

		log.Println("Service update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Service update failed", "SERVICE_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Service updated", result)
}

// ListServices returns all services of the authenticated tailor
func (h *ProfileHandler) ListServices(c fiber.Ctx) error {
	result, err := h.profileFlow.ListOwnServices(h.createRequestContext(c), accountID(c))
	if err != nil {
		log.Println("Service list failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Service list failed", "SERVICE_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Services retrieved", result)
}

func (h *ProfileHandler) profileError(c fiber.Ctx, err error, message, code string) error {
	if businessflow.IsAccountNotFound(err) {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
	}

	log.Println(message, err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, message, code, nil)
}

func (h *ProfileHandler) createRequestContext(c fiber.Ctx) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, "request_id", c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "cancel_func", cancel)

	return ctx
}
