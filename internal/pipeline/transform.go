package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/tank-level-service/internal/domain"
	"github.com/couchcryptid/tank-level-service/internal/observability"
	"github.com/couchcryptid/tank-level-service/internal/state"
	"github.com/couchcryptid/tank-level-service/internal/volume"
)

// TankSource resolves which tanks depend on a sensor entity.
type TankSource interface {
	ForEntity(entityID string) []domain.TankConfig
	All() []domain.TankConfig
}

// LevelTransformer implements Transformer. Each reading updates the entity
// state store and recomputes the level of every tank that reads the entity.
type LevelTransformer struct {
	tanks       TankSource
	store       *state.Store
	compensator volume.Compensator
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewTransformer creates a LevelTransformer.
func NewTransformer(tanks TankSource, store *state.Store, compensator volume.Compensator, logger *slog.Logger, metrics *observability.Metrics) *LevelTransformer {
	return &LevelTransformer{
		tanks:       tanks,
		store:       store,
		compensator: compensator,
		logger:      logger,
		metrics:     metrics,
	}
}

// Seed records an initial level for every tank so lookups succeed before the
// first reading arrives. Nothing is published.
func (t *LevelTransformer) Seed() {
	for _, tank := range t.tanks.All() {
		if _, ok := t.store.Level(tank.ID); ok {
			continue
		}
		t.store.PutLevel(t.compute(tank))
	}
}

// Transform parses a sensor reading and returns one level record per
// affected tank. Readings of entities no tank uses, and readings older than
// the state already held, produce no records.
func (t *LevelTransformer) Transform(_ context.Context, raw domain.RawEvent) ([]domain.OutputEvent, error) {
	reading, err := domain.ParseSensorReading(raw)
	if err != nil {
		return nil, err
	}

	affected := t.tanks.ForEntity(reading.EntityID)
	if len(affected) == 0 {
		t.metrics.ReadingsIgnored.WithLabelValues("unknown_entity").Inc()
		t.logger.Debug("reading for unconfigured entity", "entity_id", reading.EntityID)
		return nil, nil
	}

	if !t.store.PutEntity(reading) {
		t.metrics.ReadingsIgnored.WithLabelValues("stale").Inc()
		t.logger.Debug("stale reading dropped",
			"entity_id", reading.EntityID,
			"last_updated", reading.LastUpdated,
		)
		return nil, nil
	}

	out := make([]domain.OutputEvent, 0, len(affected))
	for _, tank := range affected {
		level := t.compute(tank)
		t.observe(level)
		t.store.PutLevel(level)

		msg, err := domain.SerializeLevelEvent(level)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, nil
}

func (t *LevelTransformer) compute(tank domain.TankConfig) domain.LevelEvent {
	return domain.ComputeLevel(
		tank,
		t.store.Entity(tank.SourceEntity),
		t.store.Entity(tank.TemperatureEntity),
		t.compensator,
	)
}

// observe logs and counts unavailable levels and skipped compensation.
func (t *LevelTransformer) observe(level domain.LevelEvent) {
	if !level.Available {
		t.metrics.LevelsUnavailable.WithLabelValues(level.Reason).Inc()
		attrs := []any{
			"tank_id", level.TankID,
			"entity_id", level.SourceEntity,
			"reason", level.Reason,
		}
		if level.Reason == domain.ReasonInvalidGeometry {
			attrs = append(attrs,
				"fill_height", derefOrNil(level.FillHeight),
				"diameter", level.Diameter,
				"cylinder_length", level.CylinderLength,
			)
			t.logger.Error("invalid level calculation", attrs...)
			return
		}
		t.logger.Warn("tank level unavailable", attrs...)
		return
	}

	if level.CompensationSkipped != "" {
		t.metrics.CompensationSkipped.WithLabelValues(level.CompensationSkipped).Inc()
		t.logger.Warn("temperature compensation skipped",
			"tank_id", level.TankID,
			"entity_id", level.TemperatureEntity,
			"reason", level.CompensationSkipped,
			"temperature_unit", level.TemperatureUnit,
		)
	}
}

func derefOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
