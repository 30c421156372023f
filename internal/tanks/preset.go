package tanks

import "sort"

// CapacityCustom marks a tank whose dimensions come from the file.
const CapacityCustom = "custom"

// DefaultCapacity is used when a tank entry omits capacity.
const DefaultCapacity = "500"

// Preset holds the nominal dimensions of a standard horizontal propane tank.
// Lengths are inches, volume is water capacity in gallons.
type Preset struct {
	Diameter    float64 `json:"diameter"`
	TotalLength float64 `json:"total_length"`
	Volume      float64 `json:"volume"`
}

var presets = map[string]Preset{
	"250":  {Diameter: 30, TotalLength: 92, Volume: 250},
	"330":  {Diameter: 38, TotalLength: 74, Volume: 330},
	"500":  {Diameter: 37.5, TotalLength: 120, Volume: 500},
	"1000": {Diameter: 41, TotalLength: 190, Volume: 1000},
}

// LookupPreset returns the dimensions of a standard capacity.
func LookupPreset(capacity string) (Preset, bool) {
	p, ok := presets[capacity]
	return p, ok
}

// PresetCapacities lists the standard capacities in ascending order.
func PresetCapacities() []string {
	keys := make([]string, 0, len(presets))
	for k := range presets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return presets[keys[i]].Volume < presets[keys[j]].Volume
	})
	return keys
}
