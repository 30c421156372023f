// Command mocksensor publishes simulated sensor readings to the source topic,
// standing in for a real height or temperature sensor. A single -value sets
// the entity once; -to ramps it over -steps readings.
//
// Usage:
//
//	KAFKA_BROKERS=localhost:9092 go run ./cmd/mocksensor -entity sensor.propane_height -value 18.75
//	go run ./cmd/mocksensor -entity sensor.propane_height -value 37.5 -to 3 -steps 20 -interval 1s
//	go run ./cmd/mocksensor -entity sensor.outdoor_temperature -value 85 -unit °F
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/tank-level-service/internal/config"
	"github.com/couchcryptid/tank-level-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"gonum.org/v1/gonum/floats"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	entity := flag.String("entity", "", "entity id to publish")
	value := flag.Float64("value", 0, "state to publish (start of the ramp with -to)")
	to := flag.Float64("to", math.NaN(), "optional end of a ramp")
	steps := flag.Int("steps", 10, "number of readings in a ramp")
	interval := flag.Duration("interval", time.Second, "delay between ramp readings")
	unit := flag.String("unit", "in", "unit_of_measurement")
	unavailable := flag.Bool("unavailable", false, "publish the state \"unavailable\" instead of a value")
	flag.Parse()

	if *entity == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -entity")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var readings []domain.SensorReading
	switch {
	case *unavailable:
		readings = []domain.SensorReading{reading(*entity, "unavailable", "", time.Now())}
	case math.IsNaN(*to):
		readings = ramp(*entity, *unit, *value, *value, 1, time.Now(), 0)
	default:
		readings = ramp(*entity, *unit, *value, *to, *steps, time.Now(), *interval)
	}

	writer := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSourceTopic,
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
	}
	if err := send(ctx, writer, readings, *interval); err != nil {
		return err
	}
	log.Printf("published %d readings for %s to %s", len(readings), *entity, cfg.KafkaSourceTopic)
	return nil
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// send publishes readings and closes w, whether or not publishing succeeded.
func send(ctx context.Context, w messageWriter, readings []domain.SensorReading, interval time.Duration) (err error) {
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close writer: %w", cerr)
		}
	}()
	return publish(ctx, w, readings, interval)
}

// publish writes readings one at a time, waiting interval between them so the
// service sees a sensor that changes over time.
func publish(ctx context.Context, w messageWriter, readings []domain.SensorReading, interval time.Duration) error {
	for i, r := range readings {
		if i > 0 && interval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal reading: %w", err)
		}
		if err := w.WriteMessages(ctx, kafkago.Message{Key: []byte(r.EntityID), Value: payload}); err != nil {
			return fmt.Errorf("write reading %d: %w", i, err)
		}
		log.Printf("%s = %s %s", r.EntityID, r.State, r.Unit)
	}
	return nil
}

// ramp returns steps readings evenly spaced from one value to another, with
// last_updated advancing by interval.
func ramp(entity, unit string, from, to float64, steps int, start time.Time, interval time.Duration) []domain.SensorReading {
	if steps < 2 {
		return []domain.SensorReading{reading(entity, formatState(from), unit, start)}
	}
	values := floats.Span(make([]float64, steps), from, to)
	out := make([]domain.SensorReading, 0, steps)
	for i, v := range values {
		out = append(out, reading(entity, formatState(v), unit, start.Add(time.Duration(i)*interval)))
	}
	return out
}

func reading(entity, state, unit string, at time.Time) domain.SensorReading {
	return domain.SensorReading{
		EntityID:    entity,
		State:       state,
		Unit:        unit,
		LastUpdated: at.UTC().Format(time.RFC3339Nano),
	}
}

func formatState(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
