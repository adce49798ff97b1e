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
)

// PresetHandlerInterface defines the contract for measurement preset handlers
type PresetHandlerInterface interface {
	CreatePreset(c fiber.Ctx) error
	ListPresets(c fiber.Ctx) error
	UpdatePreset(c fiber.Ctx) error
	DeletePreset(c fiber.Ctx) error
}

// PresetHandler handles measurement preset HTTP requests for tailors
type PresetHandler struct {
	presetFlow businessflow.MeasurementPresetFlow
	validator  *validator.Validate
}

// NewPresetHandler creates a new measurement preset handler
func NewPresetHandler(presetFlow businessflow.MeasurementPresetFlow) *PresetHandler {
	return &PresetHandler{
		presetFlow: presetFlow,
		validator:  validator.New(),
	}
}

func (h *PresetHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *PresetHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreatePreset stores a new preset for the authenticated tailor
func (h *PresetHandler) CreatePreset(c fiber.Ctx) error {
	var req dto.CreatePresetRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors(err))
	}

	result, err := h.presetFlow.CreatePreset(h.createRequestContext(c), accountID(c), &req)
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid customer reference", "VALIDATION_ERROR", nil)
		}

		log.Println("Preset creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Preset creation failed", "PRESET_CREATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Preset created", result)
}

// ListPresets returns all presets of the authenticated tailor
func (h *PresetHandler) ListPresets(c fiber.Ctx) error {
	result, err := h.presetFlow.ListPresets(h.createRequestContext(c), accountID(c))
	if err != nil {
		log.Println("Preset list failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Preset list failed", "PRESET_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Presets retrieved", result)
}

// UpdatePreset applies partial changes to a preset of the authenticated tailor
func (h *PresetHandler) UpdatePreset(c fiber.Ctx) error {
	var req dto.UpdatePresetRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors(err))
	}

	result, err := h.presetFlow.UpdatePreset(h.createRequestContext(c), accountID(c), c.Params("uuid"), &req)
	if err != nil {
		return h.presetError(c, err, "Preset update failed", "PRESET_UPDATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Preset updated", result)
}

// DeletePreset removes a preset of the authenticated tailor
func (h *PresetHandler) DeletePreset(c fiber.Ctx) error {
	if err := h.presetFlow.DeletePreset(h.createRequestContext(c), accountID(c), c.Params("uuid")); err != nil {
		return h.presetError(c, err, "Preset delete failed", "PRESET_DELETE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Preset deleted", nil)
}

func (h *PresetHandler) presetError(c fiber.Ctx, err error, message, code string) error {
	if businessflow.IsPresetNotFound(err) {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Preset not found", "PRESET_NOT_FOUND", nil)
	}
	if businessflow.IsPresetAccessDenied(err) {
		return h.ErrorResponse(c, fiber.StatusForbidden, "Preset access denied", "PRESET_ACCESS_DENIED", nil)
	}

	log.Println(message, err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, message, code, nil)
}

func (h *PresetHandler) createRequestContext(c fiber.Ctx) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, "request_id", c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "cancel_func", cancel)

	return ctx
}
