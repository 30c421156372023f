package main

import (
	"fmt"
	"math"
	"os"

	"github.com/couchcryptid/tank-level-service/internal/domain"
	"github.com/couchcryptid/tank-level-service/internal/tanks"
	"github.com/couchcryptid/tank-level-service/internal/volume"
	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/integrate/quad"
)

const (
	tol       = 1e-9
	quadTol   = 1e-3
	quadNodes = 256
)

var (
	diameters = []float64{1, 24, 37.5, 41, 1000}
	endCaps   = []volume.EndCap{volume.EndCapFlat, volume.EndCapEllipsoidal21}
)

// grid returns n evenly spaced heights from empty to full.
func grid(diameter float64, n int) []float64 {
	return floats.Span(make([]float64, n), 0, diameter)
}

func near(a, b, abs float64) bool {
	return scalar.EqualWithinAbsOrRel(a, b, abs, abs)
}

// ── Geometry ──

func verifyCylinderBoundaries() *phase {
	p := &phase{name: "Cylinder boundaries"}
	for _, d := range diameters {
		checks := []struct {
			h    float64
			want float64
		}{
			{0, 0},
			{d / 2, 50},
			{d, 100},
			{-d, 0},
			{2 * d, 100},
		}
		for _, c := range checks {
			got, ok := volume.CylinderFillPercentage(c.h, d)
			if !ok {
				p.errorf("d=%g h=%g: no value", d, c.h)
				continue
			}
			if !near(got, c.want, tol) {
				p.errorf("d=%g h=%g: got %.9f, want %g", d, c.h, got, c.want)
			}
		}
	}
	for _, d := range []float64{0, -1, math.NaN()} {
		if _, ok := volume.CylinderFillPercentage(1, d); ok {
			p.errorf("d=%g: expected no value", d)
		}
	}
	return p
}

func verifyScaleInvariance() *phase {
	p := &phase{name: "Scale invariance"}
	const base = 24.0
	for _, endCap := range endCaps {
		for _, h := range grid(base, 25) {
			want, ok := volume.TankFillPercentageWithHeads(h, base, 60, endCap)
			if !ok {
				p.errorf("%s h=%g: no value", endCap, h)
				continue
			}
			for _, k := range []float64{0.01, 2.54, 12, 1000} {
				got, ok := volume.TankFillPercentageWithHeads(h*k, base*k, 60*k, endCap)
				if !ok || !near(got, want, 1e-7) {
					p.errorf("%s h=%g k=%g: got %.9f, want %.9f", endCap, h, k, got, want)
				}
			}
		}
	}
	return p
}

func verifySymmetry() *phase {
	p := &phase{name: "Fill symmetry about half height"}
	for _, endCap := range endCaps {
		for _, d := range diameters {
			for _, h := range grid(d, 21) {
				lower, ok1 := volume.TankFillPercentageWithHeads(h, d, 2*d, endCap)
				upper, ok2 := volume.TankFillPercentageWithHeads(d-h, d, 2*d, endCap)
				if !ok1 || !ok2 {
					p.errorf("%s d=%g h=%g: no value", endCap, d, h)
					continue
				}
				if !near(lower+upper, 100, 1e-7) {
					p.errorf("%s d=%g h=%g: %g + %g != 100", endCap, d, h, lower, upper)
				}
			}
		}
	}
	return p
}

func verifyMonotonic() *phase {
	p := &phase{name: "Monotonic in fill height"}
	for _, endCap := range endCaps {
		for _, d := range diameters {
			prev := -1.0
			for _, h := range grid(d, 101) {
				got, ok := volume.TankFillPercentageWithHeads(h, d, 3*d, endCap)
				if !ok {
					p.errorf("%s d=%g h=%g: no value", endCap, d, h)
					break
				}
				if got < prev {
					p.errorf("%s d=%g h=%g: %g < %g", endCap, d, h, got, prev)
				}
				prev = got
			}
		}
	}
	return p
}

// verifySegmentArea integrates the chord width of the circular cross-section
// and compares it with the closed form.
func verifySegmentArea() *phase {
	p := &phase{name: "Segment area vs quadrature"}
	for _, d := range diameters {
		r := d / 2
		chord := func(z float64) float64 {
			y := z - r
			return 2 * math.Sqrt(math.Max(r*r-y*y, 0))
		}
		for _, h := range grid(d, 11)[1:] {
			area := quad.Fixed(chord, 0, h, quadNodes, nil, 0)
			want := 100 * area / (math.Pi * r * r)
			got, ok := volume.CylinderFillPercentage(h, d)
			if !ok || math.Abs(got-want) > quadTol {
				p.errorf("d=%g h=%g: got %.6f, quadrature %.6f", d, h, got, want)
			}
		}
	}
	return p
}

// verifyHeadVolume integrates the horizontal slice area of one 2:1 head and
// compares it with HeadVolume.
func verifyHeadVolume() *phase {
	p := &phase{name: "Head volume vs quadrature"}
	for _, d := range diameters {
		r := d / 2
		a := volume.EndCapEllipsoidal21.HeadDepth(d)
		slice := func(z float64) float64 {
			y := z - r
			return math.Pi * a * (r*r - y*y) / (2 * r)
		}
		for _, h := range grid(d, 11)[1:] {
			want := quad.Fixed(slice, 0, h, 8, nil, 0)
			got := volume.HeadVolume(h, r, a)
			if !near(got, want, 1e-9*math.Max(1, want)) {
				p.errorf("d=%g h=%g: got %.9f, quadrature %.9f", d, h, got, want)
			}
		}
		full := 2.0 / 3.0 * math.Pi * r * r * a
		if got := volume.HeadVolume(2*r, r, a); !near(got, full, 1e-9*full) {
			p.errorf("d=%g: full head %.9f, want %.9f", d, got, full)
		}
	}
	return p
}

// ── Thermal ──

func verifyThermal(comp volume.Compensator) *phase {
	p := &phase{name: "Thermal compensation"}
	if got, err := comp.Apply(80, volume.ReferenceFahrenheit, volume.Fahrenheit); err != nil || got != 80 {
		p.errorf("identity at %g°F: got %g, %v", volume.ReferenceFahrenheit, got, err)
	}
	if got, err := comp.Apply(80, volume.ReferenceCelsius, volume.Celsius); err != nil || got != 80 {
		p.errorf("identity at %g°C: got %g, %v", volume.ReferenceCelsius, got, err)
	}
	if got, _ := comp.Apply(80, 90, volume.Fahrenheit); got >= 80 {
		p.errorf("warm liquid should read lower: got %g", got)
	}
	if got, _ := comp.Apply(80, 30, volume.Fahrenheit); got <= 80 {
		p.errorf("cold liquid should read higher: got %g", got)
	}
	for _, c := range []float64{-20, 0, 15, 35, 45} {
		// 15°C is 59°F, so the Fahrenheit reading one degree above the
		// converted value sits the same distance from its reference.
		f := c*9/5 + 33
		inC, errC := comp.Apply(70, c, volume.Celsius)
		inF, errF := comp.Apply(70, f, volume.Fahrenheit)
		if errC != nil || errF != nil {
			p.errorf("%g°C: %v %v", c, errC, errF)
			continue
		}
		if !near(inC, inF, 1e-9) {
			p.errorf("%g°C vs %g°F: %g vs %g", c, f, inC, inF)
		}
	}
	if _, err := comp.Apply(80, 20, volume.TemperatureUnit("K")); err == nil {
		p.errorf("unsupported unit accepted")
	}
	return p
}

// ── Tank file ──

func verifyTankFile(registry *tanks.Registry) *phase {
	p := &phase{name: "Configured tanks"}
	for _, tank := range registry.All() {
		if tank.CylinderLength <= 0 {
			p.errorf("%s: cylinder length %g", tank.ID, tank.CylinderLength)
			continue
		}
		checks := []struct {
			h    float64
			want float64
		}{
			{0, 0},
			{tank.Diameter / 2, 50},
			{tank.Diameter, 100},
		}
		for _, c := range checks {
			got, ok := volume.TankFillPercentageWithHeads(c.h, tank.Diameter, tank.CylinderLength, tank.EndCap)
			if !ok || !near(got, c.want, 1e-7) {
				p.errorf("%s h=%g: got %g, want %g", tank.ID, c.h, got, c.want)
			}
		}
	}
	return p
}

// ── Reference chart ──

// referenceRow is one line of a manufacturer or field-measured chart.
type referenceRow struct {
	Height     float64 `csv:"height"`
	Percentage float64 `csv:"percentage"`
}

func loadReferenceChart(path string) ([]referenceRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open chart: %w", err)
	}
	defer f.Close()

	var rows []referenceRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parse chart %s: %w", path, err)
	}
	return rows, nil
}

func verifyReferenceChart(tank domain.TankConfig, rows []referenceRow, tolerance float64) *phase {
	p := &phase{name: fmt.Sprintf("Reference chart (%s)", tank.ID)}
	if len(rows) == 0 {
		p.errorf("chart is empty")
		return p
	}
	for i, row := range rows {
		got, ok := volume.TankFillPercentageWithHeads(row.Height, tank.Diameter, tank.CylinderLength, tank.EndCap)
		if !ok {
			p.errorf("row %d h=%g: no value", i+1, row.Height)
			continue
		}
		if math.Abs(got-row.Percentage) > tolerance {
			p.errorf("row %d h=%g: model %.3f%%, chart %.3f%%", i+1, row.Height, got, row.Percentage)
		}
	}
	return p
}
