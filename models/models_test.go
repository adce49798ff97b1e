package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorhq/sartor/utils"
)

func TestBookingIsTerminal(t *testing.T) {
	cases := []struct {
		status   string
		terminal bool
	}{
		{BookingStatusPending, false},
		{BookingStatusConfirmed, false},
		{BookingStatusInProgress, false},
		{BookingStatusCompleted, true},
		{BookingStatusCancelled, true},
	}

	for _, tc := range cases {
		b := &Booking{Status: tc.status}
		assert.Equal(t, tc.terminal, b.IsTerminal(), "status %s", tc.status)
	}
}

func TestHasPassword(t *testing.T) {
	customer := &Customer{}
	assert.False(t, customer.HasPassword())

	customer.PasswordHash = utils.ToPtr("")
	assert.False(t, customer.HasPassword())

	customer.PasswordHash = utils.ToPtr("$2a$10$hash")
	assert.True(t, customer.HasPassword())

	tailor := &Tailor{PasswordHash: utils.ToPtr("$2a$10$hash")}
	assert.True(t, tailor.HasPassword())
}

func TestMeasurementMapScanRoundTrip(t *testing.T) {
	m := MeasurementMap{"chest": 102.5, "waist": 88}

	value, err := m.Value()
	require.NoError(t, err)

	var scanned MeasurementMap
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, m, scanned)

	var fromNil MeasurementMap
	require.NoError(t, fromNil.Scan(nil))
	assert.Empty(t, fromNil)

	assert.Error(t, scanned.Scan(42))
}
