package tanks

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/tank-level-service/internal/domain"
	"github.com/couchcryptid/tank-level-service/internal/volume"
	"gopkg.in/yaml.v3"
)

// Validation errors. The message is the stable code reported to operators.
var (
	ErrMissingID         = errors.New("missing_id")
	ErrMissingSource     = errors.New("missing_source_entity")
	ErrInvalidCapacity   = errors.New("invalid_capacity")
	ErrInvalidEndCap     = errors.New("invalid_end_cap")
	ErrInvalidDiameter   = errors.New("invalid_diameter")
	ErrInvalidLength     = errors.New("invalid_length")
	ErrInvalidVolume     = errors.New("invalid_volume")
	ErrAlreadyConfigured = errors.New("already_configured")
	ErrNoTanks           = errors.New("no tanks configured")
)

// Entry is one tank as written in the file.
type Entry struct {
	ID                string   `yaml:"id"`
	Name              string   `yaml:"name"`
	SourceEntity      string   `yaml:"source_entity"`
	TemperatureEntity string   `yaml:"temperature_entity"`
	Capacity          Capacity `yaml:"capacity"`
	EndCap            string   `yaml:"end_cap"`
	Diameter          float64  `yaml:"diameter"`
	TotalLength       float64  `yaml:"total_length"`
	Volume            float64  `yaml:"volume"`
}

// Capacity accepts both `capacity: 500` and `capacity: "500"`.
type Capacity string

// UnmarshalYAML keeps the scalar text regardless of its resolved tag.
func (c *Capacity) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: capacity must be a scalar", node.Line)
	}
	*c = Capacity(strings.ToLower(strings.TrimSpace(node.Value)))
	return nil
}

type file struct {
	Tanks []Entry `yaml:"tanks"`
}

// Registry is the immutable set of configured tanks.
type Registry struct {
	tanks    []domain.TankConfig
	byID     map[string]int
	byEntity map[string][]int
}

// Load reads and validates the tank file at path.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tanks file: %w", err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Parse decodes a tank file. Unknown keys are rejected.
func Parse(data []byte) (*Registry, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode tanks file: %w", err)
	}
	return New(f.Tanks)
}

// New validates entries and builds a Registry. Every problem is reported,
// joined into one error.
func New(entries []Entry) (*Registry, error) {
	if len(entries) == 0 {
		return nil, ErrNoTanks
	}

	r := &Registry{
		tanks:    make([]domain.TankConfig, 0, len(entries)),
		byID:     make(map[string]int, len(entries)),
		byEntity: make(map[string][]int),
	}
	sources := make(map[string]string, len(entries))

	var errs []error
	for i, e := range entries {
		tank, err := Resolve(e)
		if err != nil {
			errs = append(errs, fmt.Errorf("tank %d (%s): %w", i, e.ID, err))
			continue
		}
		if _, dup := r.byID[tank.ID]; dup {
			errs = append(errs, fmt.Errorf("tank %q: id %w", tank.ID, ErrAlreadyConfigured))
			continue
		}
		if other, dup := sources[tank.SourceEntity]; dup {
			errs = append(errs, fmt.Errorf("tank %q: source entity %s %w by tank %q",
				tank.ID, tank.SourceEntity, ErrAlreadyConfigured, other))
			continue
		}
		sources[tank.SourceEntity] = tank.ID

		idx := len(r.tanks)
		r.tanks = append(r.tanks, tank)
		r.byID[tank.ID] = idx
		r.byEntity[tank.SourceEntity] = append(r.byEntity[tank.SourceEntity], idx)
		if tank.TemperatureEntity != "" && tank.TemperatureEntity != tank.SourceEntity {
			r.byEntity[tank.TemperatureEntity] = append(r.byEntity[tank.TemperatureEntity], idx)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return r, nil
}

// Resolve applies defaults and presets to one entry and validates it.
func Resolve(e Entry) (domain.TankConfig, error) {
	var errs []error

	id := strings.TrimSpace(e.ID)
	if id == "" {
		errs = append(errs, ErrMissingID)
	}
	source := strings.TrimSpace(e.SourceEntity)
	if source == "" {
		errs = append(errs, ErrMissingSource)
	}

	endCap := volume.EndCapEllipsoidal21
	if strings.TrimSpace(e.EndCap) != "" {
		parsed, err := volume.ParseEndCap(e.EndCap)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidEndCap, e.EndCap))
		} else {
			endCap = parsed
		}
	}

	capacity := string(e.Capacity)
	if capacity == "" {
		capacity = DefaultCapacity
	}
	diameter, totalLength, vol := e.Diameter, e.TotalLength, e.Volume
	if p, ok := LookupPreset(capacity); ok {
		diameter, totalLength, vol = p.Diameter, p.TotalLength, p.Volume
	} else if capacity != CapacityCustom {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidCapacity, capacity))
	}

	if !(diameter > 0) {
		errs = append(errs, ErrInvalidDiameter)
	}
	if !(vol > 0) {
		errs = append(errs, ErrInvalidVolume)
	}
	cylinderLength := CylinderLength(diameter, totalLength, endCap)
	if !(totalLength > 0) || !(cylinderLength > 0) {
		errs = append(errs, ErrInvalidLength)
	}

	if len(errs) > 0 {
		return domain.TankConfig{}, errors.Join(errs...)
	}

	name := strings.TrimSpace(e.Name)
	if name == "" {
		name = id
	}
	return domain.TankConfig{
		ID:                id,
		Name:              name,
		SourceEntity:      source,
		TemperatureEntity: strings.TrimSpace(e.TemperatureEntity),
		Capacity:          capacity,
		EndCap:            endCap,
		Diameter:          diameter,
		TotalLength:       totalLength,
		CylinderLength:    cylinderLength,
		Volume:            vol,
	}, nil
}

// CylinderLength is the straight-shell length left after subtracting the
// depth of both heads from the overall length.
func CylinderLength(diameter, totalLength float64, endCap volume.EndCap) float64 {
	return totalLength - 2*endCap.HeadDepth(diameter)
}

// Lookup returns the tank with the given id.
func (r *Registry) Lookup(id string) (domain.TankConfig, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return domain.TankConfig{}, false
	}
	return r.tanks[idx], true
}

// ForEntity returns the tanks that read entityID as height or temperature.
func (r *Registry) ForEntity(entityID string) []domain.TankConfig {
	idxs := r.byEntity[entityID]
	if len(idxs) == 0 {
		return nil
	}
	out := make([]domain.TankConfig, len(idxs))
	for i, idx := range idxs {
		out[i] = r.tanks[idx]
	}
	return out
}

// All returns every tank in file order.
func (r *Registry) All() []domain.TankConfig {
	out := make([]domain.TankConfig, len(r.tanks))
	copy(out, r.tanks)
	return out
}

// Len returns the number of configured tanks.
func (r *Registry) Len() int {
	return len(r.tanks)
}
