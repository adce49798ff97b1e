// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"

	"github.com/google/uuid"
	"github.com/sartorhq/sartor/app/dto"
	"github.com/sartorhq/sartor/models"
	"github.com/sartorhq/sartor/repository"
	"github.com/sartorhq/sartor/utils"
)

// MeasurementPresetFlow handles the measurement presets a tailor keeps
type MeasurementPresetFlow interface {
	CreatePreset(ctx context.Context, tailorID uint, request *dto.CreatePresetRequest) (*dto.PresetDTO, error)
	ListPresets(ctx context.Context, tailorID uint) ([]dto.PresetDTO, error)
	UpdatePreset(ctx context.Context, tailorID uint, presetUUID string, request *dto.UpdatePresetRequest) (*dto.PresetDTO, error)
	DeletePreset(ctx context.Context, tailorID uint, presetUUID string) error
}

// MeasurementPresetFlowImpl implements the measurement preset business flow
type MeasurementPresetFlowImpl struct {
	presetRepo   repository.MeasurementPresetRepository
	customerRepo repository.CustomerRepository
}

// NewMeasurementPresetFlow creates a new measurement preset flow instance
func NewMeasurementPresetFlow(
	presetRepo repository.MeasurementPresetRepository,
	customerRepo repository.CustomerRepository,
) MeasurementPresetFlow {
	return &MeasurementPresetFlowImpl{
		presetRepo:   presetRepo,
		customerRepo: customerRepo,
	}
}

// CreatePreset stores a new preset for the tailor, optionally pinned to one
// of their customers.
func (pf *MeasurementPresetFlowImpl) CreatePreset(ctx context.Context, tailorID uint, request *dto.CreatePresetRequest) (*dto.PresetDTO, error) {
	var customerID *uint
	if request.CustomerUUID != nil {
		id, err := uuid.Parse(*request.CustomerUUID)
		if err != nil {
			return nil, NewBusinessError("PRESET_VALIDATION_FAILED", "Invalid customer reference", err)
		}
		customer, err := pf.customerRepo.ByUUID(ctx, id)
		if err != nil {
			return nil, NewBusinessError("PRESET_CREATION_FAILED", "Preset creation failed", err)
		}
		if customer == nil {
			return nil, NewBusinessError("PRESET_VALIDATION_FAILED", "Invalid customer reference", ErrAccountNotFound)
		}
		customerID = &customer.ID
	}

	preset := &models.MeasurementPreset{
		UUID:         uuid.New(),
		TailorID:     tailorID,
		CustomerID:   customerID,
		Name:         request.Name,
		Measurements: request.Measurements,
		Notes:        request.Notes,
		CreatedAt:    utils.UTCNow(),
		UpdatedAt:    utils.UTCNow(),
	}

	if err := pf.presetRepo.Save(ctx, preset); err != nil {
		return nil, NewBusinessError("PRESET_CREATION_FAILED", "Preset creation failed", err)
	}

	result := ToPresetDTO(*preset)
	return &result, nil
}

// ListPresets returns all presets owned by the tailor
func (pf *MeasurementPresetFlowImpl) ListPresets(ctx context.Context, tailorID uint) ([]dto.PresetDTO, error) {
	presets, err := pf.presetRepo.ListByTailor(ctx, tailorID)
	if err != nil {
		return nil, NewBusinessError("PRESET_LIST_FAILED", "Preset list failed", err)
	}

	result := make([]dto.PresetDTO, 0, len(presets))
	for _, preset := range presets {
		result = append(result, ToPresetDTO(*preset))
	}
	return result, nil
}

// UpdatePreset applies partial changes to a preset owned by the tailor
func (pf *MeasurementPresetFlowImpl) UpdatePreset(ctx context.Context, tailorID uint, presetUUID string, request *dto.UpdatePresetRequest) (*dto.PresetDTO, error) {
	preset, err := pf.ownedPreset(ctx, tailorID, presetUUID)
	if err != nil {
		return nil, err
	}

	if request.Name != nil {
		preset.Name = *request.Name
	}
	if request.Measurements != nil {
		preset.Measurements = request.Measurements
	}
	if request.Notes != nil {
		preset.Notes = request.Notes
	}
	preset.UpdatedAt = utils.UTCNow()

	if err := pf.presetRepo.Update(ctx, preset); err != nil {
		return nil, NewBusinessError("PRESET_UPDATE_FAILED", "Preset update failed", err)
	}

	result := ToPresetDTO(*preset)
	return &result, nil
}

// DeletePreset removes a preset owned by the tailor
func (pf *MeasurementPresetFlowImpl) DeletePreset(ctx context.Context, tailorID uint, presetUUID string) error {
	preset, err := pf.ownedPreset(ctx, tailorID, presetUUID)
	if err != nil {
		return err
	}

	if err := pf.presetRepo.DeleteByID(ctx, preset.ID); err != nil {
		return NewBusinessError("PRESET_DELETE_FAILED", "Preset delete failed", err)
	}
	return nil
}

func (pf *MeasurementPresetFlowImpl) ownedPreset(ctx context.Context, tailorID uint, presetUUID string) (*models.MeasurementPreset, error) {
	id, err := uuid.Parse(presetUUID)
	if err != nil {
		return nil, NewBusinessError("PRESET_NOT_FOUND", "Preset not found", ErrPresetNotFound)
	}

	preset, err := pf.presetRepo.ByUUID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("PRESET_LOOKUP_FAILED", "Preset lookup failed", err)
	}
	if preset == nil {
		return nil, NewBusinessError("PRESET_NOT_FOUND", "Preset not found", ErrPresetNotFound)
	}
	if preset.TailorID != tailorID {
		return nil, NewBusinessError("PRESET_ACCESS_DENIED", "Preset access denied", ErrPresetAccessDenied)
	}
	return preset, nil
}
