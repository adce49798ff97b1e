// Package dto contains Data Transfer Objects for API request and response structures
package dto

// CreatePresetRequest represents the payload for storing a measurement preset
type CreatePresetRequest struct {
	Name         string             `json:"name" validate:"required,min=2,max=150"`
	CustomerUUID *string            `json:"customer_uuid,omitempty" validate:"omitempty,uuid4"`
	Measurements map[string]float64 `json:"measurements" validate:"required,min=1,dive,gt=0"`
	Notes        *string            `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// UpdatePresetRequest represents the payload for updating a measurement preset
type UpdatePresetRequest struct {
	Name         *string            `json:"name,omitempty" validate:"omitempty,min=2,max=150"`
	Measurements map[string]float64 `json:"measurements,omitempty" validate:"omitempty,min=1,dive,gt=0"`
	Notes        *string            `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// PresetDTO represents a measurement preset in API responses
type PresetDTO struct {
	UUID         string             `json:"uuid"`
	Name         string             `json:"name"`
	Measurements map[string]float64 `json:"measurements"`
	Notes        *string            `json:"notes,omitempty"`
	CreatedAt    string             `json:"created_at"`
	UpdatedAt    string             `json:"updated_at"`
}
