package domain

import (
	"errors"

	"github.com/couchcryptid/tank-level-service/internal/volume"
)

// Reason codes carried by LevelEvent.Reason and LevelEvent.CompensationSkipped.
const (
	ReasonSourceNotFound    = "source_not_found"
	ReasonSourceUnavailable = "source_unavailable"
	ReasonSourceNotNumeric  = "source_not_numeric"
	ReasonInvalidGeometry   = "invalid_geometry"

	ReasonTemperatureNotFound        = "temperature_not_found"
	ReasonTemperatureUnavailable     = "temperature_unavailable"
	ReasonTemperatureNotNumeric      = "temperature_not_numeric"
	ReasonUnsupportedTemperatureUnit = "unsupported_temperature_unit"
	ReasonTemperatureOutOfRange      = "temperature_out_of_range"
)

// ComputeLevel derives the level record of a tank from the latest state of its
// height entity and, when the tank has one, its temperature entity. A nil
// state means no reading has been seen for that entity yet.
func ComputeLevel(tank TankConfig, height, temperature *EntityState, comp volume.Compensator) LevelEvent {
	event := LevelEvent{
		TankID:            tank.ID,
		TankName:          tank.Name,
		SourceEntity:      tank.SourceEntity,
		Diameter:          tank.Diameter,
		CylinderLength:    tank.CylinderLength,
		EndCap:            tank.EndCap,
		TankVolume:        tank.Volume,
		TemperatureEntity: tank.TemperatureEntity,
		ProcessedAt:       clock.Now().UTC(),
	}

	if height == nil {
		event.Reason = ReasonSourceNotFound
		return event
	}

	fillHeight, err := NumericState(height.State)
	switch {
	case errors.Is(err, ErrStateUnavailable):
		event.Reason = ReasonSourceUnavailable
		return event
	case err != nil:
		event.Reason = ReasonSourceNotNumeric
		return event
	}
	event.FillHeight = &fillHeight

	pct, ok := volume.TankFillPercentageWithHeads(fillHeight, tank.Diameter, tank.CylinderLength, tank.EndCap)
	if !ok {
		event.Reason = ReasonInvalidGeometry
		return event
	}
	raw := pct
	event.RawPercentage = &raw

	if tank.TemperatureEntity != "" {
		pct = compensate(&event, pct, temperature, comp)
	}

	event.Available = true
	event.Percentage = &pct
	if tank.Volume > 0 {
		gallons := pct / 100 * tank.Volume
		event.Volume = &gallons
	}
	return event
}

// compensate applies thermal compensation from the temperature entity, or
// records why it was skipped and returns pct unchanged.
func compensate(event *LevelEvent, pct float64, temperature *EntityState, comp volume.Compensator) float64 {
	if temperature == nil {
		event.CompensationSkipped = ReasonTemperatureNotFound
		return pct
	}

	temp, err := NumericState(temperature.State)
	switch {
	case errors.Is(err, ErrStateUnavailable):
		event.CompensationSkipped = ReasonTemperatureUnavailable
		return pct
	case err != nil:
		event.CompensationSkipped = ReasonTemperatureNotNumeric
		return pct
	}
	event.Temperature = &temp
	event.TemperatureUnit = temperature.Unit

	unit, err := volume.ParseTemperatureUnit(temperature.Unit)
	if err != nil {
		event.CompensationSkipped = ReasonUnsupportedTemperatureUnit
		return pct
	}
	event.TemperatureUnit = string(unit)

	corrected, err := comp.Apply(pct, temp, unit)
	switch {
	case errors.Is(err, volume.ErrUnsupportedUnit):
		event.CompensationSkipped = ReasonUnsupportedTemperatureUnit
		return pct
	case err != nil:
		event.CompensationSkipped = ReasonTemperatureOutOfRange
		return pct
	}

	event.Compensated = true
	return corrected
}
