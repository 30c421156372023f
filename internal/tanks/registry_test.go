package tanks

import (
	"path/filepath"
	"testing"

	"github.com/couchcryptid/tank-level-service/internal/volume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Fixture(t *testing.T) {
	r, err := Load(filepath.Join("testdata", "tanks.yaml"))
	require.NoError(t, err)
	require.Equal(t, 3, r.Len())

	backyard, ok := r.Lookup("backyard")
	require.True(t, ok)
	assert.Equal(t, "Backyard propane", backyard.Name)
	assert.Equal(t, "500", backyard.Capacity)
	assert.Equal(t, volume.EndCapEllipsoidal21, backyard.EndCap)
	assert.Equal(t, 37.5, backyard.Diameter)
	assert.Equal(t, 120.0, backyard.TotalLength)
	assert.Equal(t, 101.25, backyard.CylinderLength)
	assert.Equal(t, 500.0, backyard.Volume)

	shop, ok := r.Lookup("shop")
	require.True(t, ok)
	assert.Equal(t, "shop", shop.Name)
	assert.Equal(t, volume.EndCapFlat, shop.EndCap)
	assert.Equal(t, 60.0, shop.CylinderLength)
	assert.Equal(t, 117.5, shop.Volume)

	cabin, ok := r.Lookup("cabin")
	require.True(t, ok)
	assert.Equal(t, "1000", cabin.Capacity)
	assert.Equal(t, 41.0, cabin.Diameter)

	_, ok = r.Lookup("garage")
	assert.False(t, ok)

	ids := make([]string, 0, 3)
	for _, tank := range r.All() {
		ids = append(ids, tank.ID)
	}
	assert.Equal(t, []string{"backyard", "shop", "cabin"}, ids)
}

func TestRegistry_ForEntity(t *testing.T) {
	r, err := Load(filepath.Join("testdata", "tanks.yaml"))
	require.NoError(t, err)

	height := r.ForEntity("sensor.propane_height")
	require.Len(t, height, 1)
	assert.Equal(t, "backyard", height[0].ID)

	shared := r.ForEntity("sensor.outdoor_temperature")
	require.Len(t, shared, 2)
	assert.Equal(t, "backyard", shared[0].ID)
	assert.Equal(t, "shop", shared[1].ID)

	assert.Empty(t, r.ForEntity("sensor.unrelated"))
}

func TestParse_Defaults(t *testing.T) {
	r, err := Parse([]byte(`
tanks:
  - id: main
    source_entity: sensor.main_height
`))
	require.NoError(t, err)

	tank, ok := r.Lookup("main")
	require.True(t, ok)
	assert.Equal(t, DefaultCapacity, tank.Capacity)
	assert.Equal(t, volume.EndCapEllipsoidal21, tank.EndCap)
	assert.Equal(t, 37.5, tank.Diameter)
	assert.Empty(t, tank.TemperatureEntity)
}

func TestParse_PresetOverridesFileValues(t *testing.T) {
	r, err := Parse([]byte(`
tanks:
  - id: main
    source_entity: sensor.main_height
    capacity: 250
    diameter: 99
    total_length: 999
    volume: 1
`))
	require.NoError(t, err)

	tank, _ := r.Lookup("main")
	assert.Equal(t, 30.0, tank.Diameter)
	assert.Equal(t, 92.0, tank.TotalLength)
	assert.Equal(t, 250.0, tank.Volume)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name:    "empty file",
			yaml:    ``,
			wantErr: ErrNoTanks,
		},
		{
			name:    "missing id",
			yaml:    "tanks:\n  - source_entity: sensor.a\n",
			wantErr: ErrMissingID,
		},
		{
			name:    "missing source",
			yaml:    "tanks:\n  - id: a\n",
			wantErr: ErrMissingSource,
		},
		{
			name:    "unknown capacity",
			yaml:    "tanks:\n  - id: a\n    source_entity: sensor.a\n    capacity: 750\n",
			wantErr: ErrInvalidCapacity,
		},
		{
			name:    "unknown end cap",
			yaml:    "tanks:\n  - id: a\n    source_entity: sensor.a\n    end_cap: hemispherical\n",
			wantErr: ErrInvalidEndCap,
		},
		{
			name:    "custom without diameter",
			yaml:    "tanks:\n  - id: a\n    source_entity: sensor.a\n    capacity: custom\n    total_length: 60\n    volume: 100\n",
			wantErr: ErrInvalidDiameter,
		},
		{
			name:    "custom with negative length",
			yaml:    "tanks:\n  - id: a\n    source_entity: sensor.a\n    capacity: custom\n    diameter: 24\n    total_length: -1\n    volume: 100\n",
			wantErr: ErrInvalidLength,
		},
		{
			name:    "heads longer than the tank",
			yaml:    "tanks:\n  - id: a\n    source_entity: sensor.a\n    capacity: custom\n    diameter: 24\n    total_length: 12\n    volume: 100\n",
			wantErr: ErrInvalidLength,
		},
		{
			name:    "custom with zero volume",
			yaml:    "tanks:\n  - id: a\n    source_entity: sensor.a\n    capacity: custom\n    diameter: 24\n    total_length: 60\n",
			wantErr: ErrInvalidVolume,
		},
		{
			name:    "duplicate source entity",
			yaml:    "tanks:\n  - id: a\n    source_entity: sensor.a\n  - id: b\n    source_entity: sensor.a\n",
			wantErr: ErrAlreadyConfigured,
		},
		{
			name:    "duplicate id",
			yaml:    "tanks:\n  - id: a\n    source_entity: sensor.a\n  - id: a\n    source_entity: sensor.b\n",
			wantErr: ErrAlreadyConfigured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParse_ReportsEveryProblem(t *testing.T) {
	_, err := Parse([]byte(`
tanks:
  - id: a
    source_entity: sensor.a
    capacity: custom
`))
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidDiameter)
	require.ErrorIs(t, err, ErrInvalidLength)
	require.ErrorIs(t, err, ErrInvalidVolume)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("tanks:\n  - id: a\n    source_entity: sensor.a\n    colour: red\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode tanks file")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read tanks file")
}

func TestCylinderLength(t *testing.T) {
	assert.Equal(t, 101.25, CylinderLength(37.5, 120, volume.EndCapEllipsoidal21))
	assert.Equal(t, 120.0, CylinderLength(37.5, 120, volume.EndCapFlat))
}

func TestPresetCapacities(t *testing.T) {
	assert.Equal(t, []string{"250", "330", "500", "1000"}, PresetCapacities())

	p, ok := LookupPreset("330")
	require.True(t, ok)
	assert.Equal(t, 330.0, p.Volume)

	_, ok = LookupPreset(CapacityCustom)
	assert.False(t, ok)
}
