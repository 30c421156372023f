package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSensorReading(t *testing.T) {
	msgTime := time.Date(2024, 11, 2, 6, 0, 0, 0, time.UTC)

	t.Run("full reading", func(t *testing.T) {
		raw := RawEvent{
			Value:     []byte(`{"entity_id":"sensor.tank_height","state":"17.25","unit_of_measurement":"in","last_updated":"2024-11-02T06:15:00Z"}`),
			Timestamp: msgTime,
		}
		result, err := ParseSensorReading(raw)

		require.NoError(t, err)
		assert.Equal(t, "sensor.tank_height", result.EntityID)
		assert.Equal(t, "17.25", result.State)
		assert.Equal(t, "in", result.Unit)
		assert.Equal(t, time.Date(2024, 11, 2, 6, 15, 0, 0, time.UTC), result.LastUpdated)
	})

	t.Run("last_updated falls back to message time", func(t *testing.T) {
		raw := RawEvent{
			Value:     []byte(`{"entity_id":"sensor.tank_height","state":"12"}`),
			Timestamp: msgTime,
		}
		result, err := ParseSensorReading(raw)

		require.NoError(t, err)
		assert.Equal(t, msgTime, result.LastUpdated)
	})

	t.Run("malformed last_updated falls back to message time", func(t *testing.T) {
		raw := RawEvent{
			Value:     []byte(`{"entity_id":"sensor.tank_height","state":"12","last_updated":"yesterday"}`),
			Timestamp: msgTime,
		}
		result, err := ParseSensorReading(raw)

		require.NoError(t, err)
		assert.Equal(t, msgTime, result.LastUpdated)
	})

	t.Run("last_updated falls back to clock", func(t *testing.T) {
		now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		SetClock(clockwork.NewFakeClockAt(now))
		defer SetClock(nil)

		result, err := ParseSensorReading(RawEvent{Value: []byte(`{"entity_id":"sensor.a","state":"1"}`)})
		require.NoError(t, err)
		assert.Equal(t, now, result.LastUpdated)
	})

	t.Run("unavailable state is not a parse error", func(t *testing.T) {
		result, err := ParseSensorReading(RawEvent{Value: []byte(`{"entity_id":"sensor.a","state":"unavailable"}`)})
		require.NoError(t, err)
		assert.Equal(t, "unavailable", result.State)
	})

	t.Run("whitespace is trimmed", func(t *testing.T) {
		result, err := ParseSensorReading(RawEvent{Value: []byte(`{"entity_id":" sensor.a ","state":" 3.5 ","unit_of_measurement":" °F "}`)})
		require.NoError(t, err)
		assert.Equal(t, "sensor.a", result.EntityID)
		assert.Equal(t, "3.5", result.State)
		assert.Equal(t, "°F", result.Unit)
	})

	t.Run("missing entity_id", func(t *testing.T) {
		_, err := ParseSensorReading(RawEvent{Value: []byte(`{"state":"12"}`)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing entity_id")
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseSensorReading(RawEvent{Value: []byte("{invalid json")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse sensor reading")
	})
}

func TestNumericState(t *testing.T) {
	tests := []struct {
		state    string
		expected float64
		wantErr  error
	}{
		{"17.25", 17.25, nil},
		{" 0 ", 0, nil},
		{"-3", -3, nil},
		{"1e2", 100, nil},
		{"unavailable", 0, ErrStateUnavailable},
		{"unknown", 0, ErrStateUnavailable},
		{"Unknown", 0, ErrStateUnavailable},
		{"", 0, ErrStateUnavailable},
		{"abc", 0, ErrStateNotNumeric},
		{"12in", 0, ErrStateNotNumeric},
		{"NaN", 0, ErrStateNotNumeric},
		{"+Inf", 0, ErrStateNotNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			result, err := NumericState(tt.state)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}
