package volume

import (
	"errors"
	"fmt"
	"strings"
)

// TemperatureUnit is the scale of a temperature reading.
type TemperatureUnit string

const (
	Celsius    TemperatureUnit = "°C"
	Fahrenheit TemperatureUnit = "°F"
)

const (
	// DefaultBetaFahrenheit is the volumetric expansion coefficient of propane
	// per °F.
	DefaultBetaFahrenheit = 0.0019

	ReferenceFahrenheit = 60.0
	ReferenceCelsius    = 15.0
)

// ErrUnsupportedUnit is returned for temperature units other than Celsius and
// Fahrenheit. Callers skip compensation when they see it.
var ErrUnsupportedUnit = errors.New("unsupported temperature unit")

// ErrTemperatureOutOfRange is returned when the expansion factor would be zero
// or negative, which only happens below absolute zero.
var ErrTemperatureOutOfRange = errors.New("temperature out of range")

// ParseTemperatureUnit accepts the usual spellings of the two supported
// scales ("°C", "C", "celsius", "°F", "F", "fahrenheit"), case-insensitive.
func ParseTemperatureUnit(s string) (TemperatureUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "°c", "c", "celsius", "degc":
		return Celsius, nil
	case "°f", "f", "fahrenheit", "degf":
		return Fahrenheit, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedUnit, s)
	}
}

// Compensator rescales fill percentages to the reference temperature.
// The zero value is not useful; use DefaultCompensator or set BetaFahrenheit.
type Compensator struct {
	// BetaFahrenheit is the fractional volume change per °F.
	BetaFahrenheit float64
}

// DefaultCompensator returns a Compensator using DefaultBetaFahrenheit.
func DefaultCompensator() Compensator {
	return Compensator{BetaFahrenheit: DefaultBetaFahrenheit}
}

// Constants returns the reference temperature and expansion coefficient for
// unit.
func (c Compensator) Constants(unit TemperatureUnit) (reference, beta float64, err error) {
	switch unit {
	case Fahrenheit:
		return ReferenceFahrenheit, c.BetaFahrenheit, nil
	case Celsius:
		return ReferenceCelsius, c.BetaFahrenheit * 9 / 5, nil
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrUnsupportedUnit, string(unit))
	}
}

// Apply converts a percentage measured at temperature into the equivalent
// percentage at the reference temperature. The percentage is not range
// checked.
func (c Compensator) Apply(percentage, temperature float64, unit TemperatureUnit) (float64, error) {
	reference, beta, err := c.Constants(unit)
	if err != nil {
		return percentage, err
	}
	if temperature == reference {
		return percentage, nil
	}
	factor := 1 + beta*(temperature-reference)
	if !(factor > 0) {
		return percentage, fmt.Errorf("%w: %g%s", ErrTemperatureOutOfRange, temperature, unit)
	}
	return percentage / factor, nil
}

// ApplyTemperatureCompensation applies DefaultCompensator.
func ApplyTemperatureCompensation(percentage, temperature float64, unit TemperatureUnit) (float64, error) {
	return DefaultCompensator().Apply(percentage, temperature, unit)
}
