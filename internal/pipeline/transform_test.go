package pipeline_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/tank-level-service/internal/domain"
	"github.com/couchcryptid/tank-level-service/internal/observability"
	"github.com/couchcryptid/tank-level-service/internal/pipeline"
	"github.com/couchcryptid/tank-level-service/internal/state"
	"github.com/couchcryptid/tank-level-service/internal/tanks"
	"github.com/couchcryptid/tank-level-service/internal/volume"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var processedAt = time.Date(2024, 11, 2, 7, 0, 0, 0, time.UTC)

type levelSummary struct {
	TankID              string
	Available           bool
	Percentage          float64
	Volume              float64
	Compensated         bool
	CompensationSkipped string
	Reason              string
}

func summarize(ev domain.LevelEvent) levelSummary {
	s := levelSummary{
		TankID:              ev.TankID,
		Available:           ev.Available,
		Compensated:         ev.Compensated,
		CompensationSkipped: ev.CompensationSkipped,
		Reason:              ev.Reason,
	}
	if ev.Percentage != nil {
		s.Percentage = *ev.Percentage
	}
	if ev.Volume != nil {
		s.Volume = *ev.Volume
	}
	return s
}

func newTestTransformer(t *testing.T) (*pipeline.LevelTransformer, *state.Store, *observability.Metrics) {
	t.Helper()
	registry, err := tanks.Load(filepath.Join("testdata", "tanks.yaml"))
	require.NoError(t, err)

	metrics := newTestMetrics()
	store := state.NewStore(100, metrics)
	tfm := pipeline.NewTransformer(registry, store, volume.DefaultCompensator(), slog.Default(), metrics)
	return tfm, store, metrics
}

func readReadings(t *testing.T) []domain.RawEvent {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", "readings.json"))
	require.NoError(t, err)

	var rows []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &rows))

	events := make([]domain.RawEvent, len(rows))
	for i, row := range rows {
		events[i] = domain.RawEvent{
			Value:  row,
			Topic:  "sensor-readings",
			Offset: int64(i),
		}
	}
	return events
}

func TestLevelTransformer_ReplayReadings(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(processedAt))
	t.Cleanup(func() { domain.SetClock(nil) })

	tfm, store, metrics := newTestTransformer(t)

	wantOutputs := []int{1, 2, 1, 1, 0, 0, 1}
	readings := readReadings(t)
	require.Len(t, readings, len(wantOutputs))

	for i, raw := range readings {
		out, err := tfm.Transform(context.Background(), raw)
		require.NoError(t, err, "reading %d", i)
		assert.Len(t, out, wantOutputs[i], "reading %d", i)
		for _, msg := range out {
			assert.NotEmpty(t, msg.Key)
			assert.Equal(t, processedAt.Format(time.RFC3339), msg.Headers["processed_at"])
		}
	}

	got := make([]levelSummary, 0, 3)
	for _, ev := range store.Levels() {
		got = append(got, summarize(ev))
	}
	want := []levelSummary{
		{TankID: "backyard", Available: true, Percentage: 50, Volume: 250, Compensated: true},
		{TankID: "cabin", Available: true, Percentage: 100, Volume: 1000},
		{TankID: "shop", Available: true, Percentage: 50, Volume: 58.75, Compensated: true},
	}
	approx := cmpopts.EquateApprox(0, 1e-9)
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Fatalf("final levels mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ReadingsIgnored.WithLabelValues("unknown_entity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ReadingsIgnored.WithLabelValues("stale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.LevelsUnavailable.WithLabelValues(domain.ReasonSourceNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.LevelsUnavailable.WithLabelValues(domain.ReasonSourceUnavailable)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CompensationSkipped.WithLabelValues(domain.ReasonTemperatureNotFound)))
}

func TestLevelTransformer_Transform_Payload(t *testing.T) {
	tfm, _, _ := newTestTransformer(t)

	out, err := tfm.Transform(context.Background(), domain.RawEvent{
		Value: []byte(`{"entity_id":"sensor.cabin_tank_height","state":"20.5"}`),
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []byte("cabin"), out[0].Key)
	assert.Equal(t, "true", out[0].Headers["available"])

	var level domain.LevelEvent
	require.NoError(t, json.Unmarshal(out[0].Value, &level))
	assert.Equal(t, "cabin", level.TankID)
	require.NotNil(t, level.Percentage)
	assert.InDelta(t, 50.0, *level.Percentage, 1e-9)
	assert.False(t, math.IsNaN(*level.Volume))
}

func TestLevelTransformer_Transform_InvalidPayload(t *testing.T) {
	tfm, _, _ := newTestTransformer(t)

	_, err := tfm.Transform(context.Background(), domain.RawEvent{Value: []byte("not json")})
	require.Error(t, err)

	_, err = tfm.Transform(context.Background(), domain.RawEvent{Value: []byte(`{"state":"12"}`)})
	require.Error(t, err)
}

func TestLevelTransformer_Transform_NonNumericHeight(t *testing.T) {
	tfm, store, _ := newTestTransformer(t)

	out, err := tfm.Transform(context.Background(), domain.RawEvent{
		Value: []byte(`{"entity_id":"sensor.propane_height","state":"sloshing"}`),
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "false", out[0].Headers["available"])

	level, ok := store.Level("backyard")
	require.True(t, ok)
	assert.Equal(t, domain.ReasonSourceNotNumeric, level.Reason)
	assert.Nil(t, level.Percentage)
}

func TestLevelTransformer_Seed(t *testing.T) {
	tfm, store, _ := newTestTransformer(t)

	_, err := tfm.Transform(context.Background(), domain.RawEvent{
		Value: []byte(`{"entity_id":"sensor.cabin_tank_height","state":"41"}`),
	})
	require.NoError(t, err)

	tfm.Seed()

	levels := store.Levels()
	require.Len(t, levels, 3)
	for _, level := range levels {
		if level.TankID == "cabin" {
			assert.True(t, level.Available, "seeding must not overwrite a computed level")
			continue
		}
		assert.False(t, level.Available)
		assert.Equal(t, domain.ReasonSourceNotFound, level.Reason)
	}
}
