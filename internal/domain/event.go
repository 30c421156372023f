package domain

import (
	"context"
	"time"

	"github.com/couchcryptid/tank-level-service/internal/volume"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// SensorReading is the JSON payload of one source message.
type SensorReading struct {
	EntityID    string `json:"entity_id"`
	State       string `json:"state"`
	Unit        string `json:"unit_of_measurement,omitempty"`
	LastUpdated string `json:"last_updated,omitempty"`
}

// EntityState is the latest known state of one sensor entity.
type EntityState struct {
	EntityID    string    `json:"entity_id"`
	State       string    `json:"state"`
	Unit        string    `json:"unit_of_measurement,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}

// TankConfig describes one configured tank. Lengths share a single unit.
type TankConfig struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	SourceEntity      string        `json:"source_entity"`
	TemperatureEntity string        `json:"temperature_entity,omitempty"`
	Capacity          string        `json:"capacity"`
	EndCap            volume.EndCap `json:"end_cap"`
	Diameter          float64       `json:"diameter"`
	TotalLength       float64       `json:"total_length"`
	CylinderLength    float64       `json:"cylinder_length"`
	Volume            float64       `json:"volume"`
}

// LevelEvent is the computed fill level of one tank.
type LevelEvent struct {
	TankID       string `json:"tank_id"`
	TankName     string `json:"tank_name,omitempty"`
	SourceEntity string `json:"source_entity"`
	Available    bool   `json:"available"`

	// Percentage is nil when the tank is unavailable.
	Percentage    *float64 `json:"percentage"`
	RawPercentage *float64 `json:"raw_percentage,omitempty"`
	FillHeight    *float64 `json:"fill_height,omitempty"`
	Volume        *float64 `json:"volume,omitempty"`

	Diameter       float64       `json:"diameter"`
	CylinderLength float64       `json:"cylinder_length"`
	EndCap         volume.EndCap `json:"end_cap"`
	TankVolume     float64       `json:"tank_volume"`

	TemperatureEntity   string   `json:"temperature_entity,omitempty"`
	Temperature         *float64 `json:"temperature,omitempty"`
	TemperatureUnit     string   `json:"temperature_unit,omitempty"`
	Compensated         bool     `json:"compensated"`
	CompensationSkipped string   `json:"compensation_skipped,omitempty"`

	Reason      string    `json:"reason,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
