package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// SerializeLevelEvent marshals a LevelEvent into an OutputEvent keyed by tank
// id, so every record of one tank lands on the same partition.
func SerializeLevelEvent(event LevelEvent) (OutputEvent, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize level event: %w", err)
	}
	return OutputEvent{
		Key:   []byte(event.TankID),
		Value: data,
		Headers: map[string]string{
			"tank_id":      event.TankID,
			"available":    strconv.FormatBool(event.Available),
			"processed_at": event.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}
