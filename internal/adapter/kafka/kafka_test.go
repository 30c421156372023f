package kafka

import (
	"testing"
	"time"

	"github.com/couchcryptid/tank-level-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapMessageToRawEvent(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("sensor.propane_height"),
		Value:     []byte(`{"entity_id":"sensor.propane_height","state":"18.75"}`),
		Topic:     "sensor-readings",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("home-assistant")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("sensor.propane_height"), raw.Key)
	assert.JSONEq(t, `{"entity_id":"sensor.propane_height","state":"18.75"}`, string(raw.Value))
	assert.Equal(t, "sensor-readings", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "home-assistant", raw.Headers["source"])
	assert.Nil(t, raw.Commit)
}

func TestToMessage(t *testing.T) {
	now := time.Date(2024, 11, 2, 6, 30, 0, 0, time.UTC)
	pct := 50.0
	out, err := domain.SerializeLevelEvent(domain.LevelEvent{
		TankID:      "backyard",
		Available:   true,
		Percentage:  &pct,
		ProcessedAt: now,
	})
	require.NoError(t, err)

	msg := toMessage(out)

	assert.Equal(t, []byte("backyard"), msg.Key)
	assert.Contains(t, string(msg.Value), `"tank_id":"backyard"`)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "available", msg.Headers[0].Key)
	assert.Equal(t, []byte("true"), msg.Headers[0].Value)
	assert.Equal(t, "processed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
	assert.Equal(t, "tank_id", msg.Headers[2].Key)
	assert.Equal(t, []byte("backyard"), msg.Headers[2].Value)
}

func TestToMessage_NoHeaders(t *testing.T) {
	msg := toMessage(domain.OutputEvent{Key: []byte("k"), Value: []byte("{}")})
	assert.Empty(t, msg.Headers)
	assert.Equal(t, []byte("{}"), msg.Value)
}
