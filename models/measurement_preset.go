// Package models contains domain entities and business models for the tailor marketplace
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MeasurementMap holds named body measurements in centimeters, stored as jsonb.
type MeasurementMap map[string]float64

func (m MeasurementMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *MeasurementMap) Scan(value any) error {
	if value == nil {
		*m = MeasurementMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported type for MeasurementMap: %T", value)
	}
}

// MeasurementPreset is a named set of measurements a tailor keeps, optionally
// pinned to one of their customers.
type MeasurementPreset struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_measurement_presets_uuid" json:"uuid"`

	TailorID uint    `gorm:"not null;index:idx_measurement_presets_tailor_id" json:"tailor_id"`
	Tailor   *Tailor `gorm:"foreignKey:TailorID;references:ID" json:"-"`

	CustomerID *uint     `gorm:"index:idx_measurement_presets_customer_id" json:"customer_id,omitempty"`
	Customer   *Customer `gorm:"foreignKey:CustomerID;references:ID" json:"customer,omitempty"`

	Name         string         `gorm:"size:150;not null" json:"name"`
	Measurements MeasurementMap `gorm:"type:jsonb;not null" json:"measurements"`
	Notes        *string        `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (MeasurementPreset) TableName() string {
	return "measurement_presets"
}

// MeasurementPresetFilter represents filter criteria for preset queries
type MeasurementPresetFilter struct {
	ID         *uint
	UUID       *uuid.UUID
	TailorID   *uint
	CustomerID *uint
	Name       *string
}
