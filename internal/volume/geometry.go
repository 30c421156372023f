package volume

import (
	"fmt"
	"math"
	"strings"
)

// EndCap selects the head-volume model for the ends of the tank.
type EndCap string

const (
	EndCapFlat          EndCap = "flat"
	EndCapEllipsoidal21 EndCap = "ellipsoidal_2_1"
)

// ParseEndCap normalizes an end cap name. It returns an error for anything
// other than "flat" or "ellipsoidal_2_1".
func ParseEndCap(s string) (EndCap, error) {
	switch c := EndCap(strings.ToLower(strings.TrimSpace(s))); c {
	case EndCapFlat, EndCapEllipsoidal21:
		return c, nil
	default:
		return "", fmt.Errorf("unknown end cap %q", s)
	}
}

// Valid reports whether c is a supported end cap.
func (c EndCap) Valid() bool {
	return c == EndCapFlat || c == EndCapEllipsoidal21
}

// HeadDepth returns the depth of one head for a tank of the given diameter.
// Flat heads have no depth.
func (c EndCap) HeadDepth(diameter float64) float64 {
	if c == EndCapEllipsoidal21 {
		return diameter / 4
	}
	return 0
}

// CylinderFillPercentage returns the liquid fraction (0–100) of a horizontal
// cylinder without heads. ok is false when diameter is not positive or the
// computation leaves the real domain.
func CylinderFillPercentage(fillHeight, diameter float64) (float64, bool) {
	if !(diameter > 0) || math.IsInf(diameter, 0) || math.IsNaN(fillHeight) {
		return 0, false
	}

	h := clamp(fillHeight, 0, diameter)
	if h <= 0 {
		return 0, true
	}
	if h >= diameter {
		return 100, true
	}

	area, ok := unitSegmentArea(h / (diameter / 2))
	if !ok {
		return 0, false
	}
	return finitePercentage(100 * area / math.Pi)
}

// HeadVolume returns the liquid volume held by one semi-ellipsoidal head with
// the given radius and depth when the tank is filled to fillHeight.
func HeadVolume(fillHeight, radius, headDepth float64) float64 {
	if fillHeight <= 0 {
		return 0
	}
	if fillHeight >= 2*radius {
		return fullHeadVolume(radius, headDepth)
	}
	return radius * headDepth * radius * unitHeadVolume(fillHeight/radius)
}

// TankFillPercentageWithHeads returns the liquid fraction (0–100) of the whole
// tank: the cylindrical section plus both heads. ok is false for a
// non-positive diameter or cylinder length, or an unknown end cap.
func TankFillPercentageWithHeads(fillHeight, diameter, cylinderLength float64, endCap EndCap) (float64, bool) {
	if !(diameter > 0) || !(cylinderLength > 0) || !endCap.Valid() {
		return 0, false
	}
	if math.IsInf(diameter, 0) || math.IsInf(cylinderLength, 0) || math.IsNaN(fillHeight) {
		return 0, false
	}

	h := clamp(fillHeight, 0, diameter)
	if h <= 0 {
		return 0, true
	}
	if h >= diameter {
		return 100, true
	}

	// Volumes are taken for a unit radius; the percentage does not depend on
	// scale.
	r := diameter / 2
	area, ok := unitSegmentArea(h / r)
	if !ok {
		return 0, false
	}
	length := cylinderLength / r

	liquid := area * length
	capacity := math.Pi * length

	if endCap == EndCapEllipsoidal21 {
		a := endCap.HeadDepth(2)
		liquid += 2 * a * unitHeadVolume(h/r)
		capacity += 2 * a * unitHeadVolume(2)
	}

	return finitePercentage(100 * liquid / capacity)
}

// unitSegmentArea is the wetted area of a unit disc filled to x, the fill
// height over the radius, 0 < x < 2.
func unitSegmentArea(x float64) (float64, bool) {
	cos := 1 - x
	chord := x * (2 - x)
	if cos < -1 || cos > 1 || chord < 0 {
		return 0, false
	}
	area := math.Acos(cos) - cos*math.Sqrt(chord)
	if math.IsNaN(area) || math.IsInf(area, 0) {
		return 0, false
	}
	return area, true
}

// unitHeadVolume is the liquid volume of one head with unit radius and unit
// depth filled to x, the fill height over the radius.
func unitHeadVolume(x float64) float64 {
	y := x - 1
	return 0.5 * math.Pi * (y - y*y*y/3 + 2.0/3.0)
}

func fullHeadVolume(radius, headDepth float64) float64 {
	return (2.0 / 3.0) * math.Pi * radius * radius * headDepth
}

// finitePercentage rejects NaN and infinities and trims floating-point
// overshoot to [0, 100].
func finitePercentage(p float64) (float64, bool) {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, false
	}
	return clamp(p, 0, 100), true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
