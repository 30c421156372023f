package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrStateUnavailable is returned for "unavailable", "unknown" and empty states.
	ErrStateUnavailable = errors.New("state unavailable")

	// ErrStateNotNumeric is returned when a state cannot be parsed as a finite number.
	ErrStateNotNumeric = errors.New("state not numeric")
)

// ParseSensorReading deserializes a RawEvent's value into the entity state it
// reports. Only malformed JSON or a missing entity_id is an error; the state
// text is validated later by NumericState.
func ParseSensorReading(raw RawEvent) (EntityState, error) {
	var rec SensorReading
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return EntityState{}, fmt.Errorf("parse sensor reading: %w", err)
	}

	entityID := strings.TrimSpace(rec.EntityID)
	if entityID == "" {
		return EntityState{}, errors.New("parse sensor reading: missing entity_id")
	}

	return EntityState{
		EntityID:    entityID,
		State:       strings.TrimSpace(rec.State),
		Unit:        strings.TrimSpace(rec.Unit),
		LastUpdated: parseLastUpdated(rec.LastUpdated, raw.Timestamp),
	}, nil
}

// parseLastUpdated parses an RFC 3339 timestamp, falling back to the message
// time and then to the current time.
func parseLastUpdated(value string, fallback time.Time) time.Time {
	if value = strings.TrimSpace(value); value != "" {
		if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
			return t.UTC()
		}
	}
	if !fallback.IsZero() {
		return fallback.UTC()
	}
	return clock.Now().UTC()
}

// NumericState parses a sensor state as a float64.
func NumericState(state string) (float64, error) {
	state = strings.TrimSpace(state)
	switch strings.ToLower(state) {
	case "", "unavailable", "unknown":
		return 0, ErrStateUnavailable
	}

	v, err := strconv.ParseFloat(state, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrStateNotNumeric, state)
	}
	return v, nil
}
