package main

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/couchcryptid/tank-level-service/internal/domain"
	"github.com/couchcryptid/tank-level-service/internal/volume"
	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/floats"
)

// chartRow is one line of the strapping chart.
type chartRow struct {
	Height        float64 `csv:"height"`
	RawPercentage float64 `csv:"raw_percentage"`
	Percentage    float64 `csv:"percentage"`
	Gallons       float64 `csv:"gallons"`
}

type chartOptions struct {
	Step        float64
	Compensate  bool
	Temperature float64
	Unit        volume.TemperatureUnit
	Compensator volume.Compensator
}

// buildChart evaluates the tank at evenly spaced heights from empty to full.
// The last row is always the full diameter.
func buildChart(tank domain.TankConfig, opts chartOptions) ([]chartRow, error) {
	if !(opts.Step > 0) {
		return nil, errors.New("step must be positive")
	}
	if !(tank.Diameter > 0) {
		return nil, fmt.Errorf("tank %s: invalid diameter %g", tank.ID, tank.Diameter)
	}

	n := int(math.Ceil(tank.Diameter/opts.Step)) + 1
	if n < 2 {
		n = 2
	}
	heights := floats.Span(make([]float64, n), 0, tank.Diameter)

	rows := make([]chartRow, 0, n)
	for _, h := range heights {
		raw, ok := volume.TankFillPercentageWithHeads(h, tank.Diameter, tank.CylinderLength, tank.EndCap)
		if !ok {
			return nil, fmt.Errorf("tank %s: no fill percentage at height %g", tank.ID, h)
		}
		pct := raw
		if opts.Compensate {
			corrected, err := opts.Compensator.Apply(raw, opts.Temperature, opts.Unit)
			if err != nil {
				return nil, err
			}
			pct = corrected
		}
		rows = append(rows, chartRow{
			Height:        round(h, 3),
			RawPercentage: round(raw, 3),
			Percentage:    round(pct, 3),
			Gallons:       round(pct/100*tank.Volume, 2),
		})
	}
	return rows, nil
}

func writeChart(w io.Writer, rows []chartRow) error {
	return gocsv.Marshal(&rows, w)
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
