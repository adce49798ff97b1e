package businessflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorhq/sartor/app/dto"
	sartortesting "github.com/sartorhq/sartor/testing"
	"github.com/sartorhq/sartor/utils"
)

type presetFixture struct {
	flow      MeasurementPresetFlow
	presets   *sartortesting.FakeMeasurementPresetRepository
	customers *sartortesting.FakeCustomerRepository
}

func newPresetFixture() *presetFixture {
	f := &presetFixture{
		presets:   sartortesting.NewFakeMeasurementPresetRepository(),
		customers: sartortesting.NewFakeCustomerRepository(),
	}
	f.flow = NewMeasurementPresetFlow(f.presets, f.customers)
	return f
}

func TestCreatePresetForCustomer(t *testing.T) {
	f := newPresetFixture()
	customer := f.customers.Add(sartortesting.NewTestCustomer("sara@example.com"))

	result, err := f.flow.CreatePreset(context.Background(), 1, &dto.CreatePresetRequest{
		Name:         "Sara winter coat",
		CustomerUUID: utils.ToPtr(customer.UUID.String()),
		Measurements: map[string]float64{"chest": 92, "waist": 74},
	})
	require.NoError(t, err)
	assert.Equal(t, "Sara winter coat", result.Name)
	assert.Equal(t, 92.0, result.Measurements["chest"])

	require.Len(t, f.presets.Presets, 1)
	require.NotNil(t, f.presets.Presets[0].CustomerID)
	assert.Equal(t, customer.ID, *f.presets.Presets[0].CustomerID)
}

func TestCreatePresetRejectsUnknownCustomer(t *testing.T) {
	f := newPresetFixture()

	_, err := f.flow.CreatePreset(context.Background(), 1, &dto.CreatePresetRequest{
		Name:         "Orphan preset",
		CustomerUUID: utils.ToPtr("11111111-2222-4333-8444-555555555555"),
		Measurements: map[string]float64{"chest": 92},
	})
	require.Error(t, err)
	assert.True(t, IsAccountNotFound(err))
	assert.Empty(t, f.presets.Presets)
}

func TestListPresetsScopedToTailor(t *testing.T) {
	f := newPresetFixture()
	f.presets.Add(sartortesting.NewTestPreset(1, "Standard suit"))
	f.presets.Add(sartortesting.NewTestPreset(1, "Slim shirt"))
	f.presets.Add(sartortesting.NewTestPreset(2, "Other tailor preset"))

	result, err := f.flow.ListPresets(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestUpdatePresetPartialChanges(t *testing.T) {
	f := newPresetFixture()
	preset := f.presets.Add(sartortesting.NewTestPreset(1, "Standard suit"))

	result, err := f.flow.UpdatePreset(context.Background(), 1, preset.UUID.String(), &dto.UpdatePresetRequest{
		Measurements: map[string]float64{"chest": 104},
	})
	require.NoError(t, err)
	assert.Equal(t, "Standard suit", result.Name)
	assert.Equal(t, 104.0, result.Measurements["chest"])
}

func TestPresetOwnershipEnforced(t *testing.T) {
	f := newPresetFixture()
	preset := f.presets.Add(sartortesting.NewTestPreset(1, "Standard suit"))

	_, err := f.flow.UpdatePreset(context.Background(), 2, preset.UUID.String(), &dto.UpdatePresetRequest{
		Name: utils.ToPtr("Hijacked"),
	})
	require.Error(t, err)
	assert.True(t, IsPresetAccessDenied(err))

	err = f.flow.DeletePreset(context.Background(), 2, preset.UUID.String())
	require.Error(t, err)
	assert.True(t, IsPresetAccessDenied(err))
	assert.Len(t, f.presets.Presets, 1)
}

func TestDeletePreset(t *testing.T) {
	f := newPresetFixture()
	preset := f.presets.Add(sartortesting.NewTestPreset(1, "Standard suit"))

	err := f.flow.DeletePreset(context.Background(), 1, preset.UUID.String())
	require.NoError(t, err)
	assert.Empty(t, f.presets.Presets)

	err = f.flow.DeletePreset(context.Background(), 1, preset.UUID.String())
	require.Error(t, err)
	assert.True(t, IsPresetNotFound(err))
}
