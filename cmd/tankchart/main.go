// Command tankchart prints a strapping chart for one configured tank: liquid
// height against fill percentage and gallons, as CSV. It uses the same
// geometry and compensation code as the service.
//
// Usage:
//
//	go run ./cmd/tankchart -tanks tanks.yaml -tank backyard -step 0.5
//	go run ./cmd/tankchart -tanks tanks.yaml -tank backyard -temperature 85 -unit F -out chart.csv
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/couchcryptid/tank-level-service/internal/tanks"
	"github.com/couchcryptid/tank-level-service/internal/volume"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	tanksFile := flag.String("tanks", "tanks.yaml", "path to the tank file")
	tankID := flag.String("tank", "", "id of the tank to chart")
	step := flag.Float64("step", 0.5, "height increment")
	temperature := flag.Float64("temperature", 0, "liquid temperature for compensation (requires -unit)")
	unit := flag.String("unit", "", "temperature unit: C or F")
	beta := flag.Float64("beta", volume.DefaultBetaFahrenheit, "expansion coefficient per °F")
	out := flag.String("out", "", "output path (default stdout)")
	flag.Parse()

	if *tankID == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -tank")
	}

	registry, err := tanks.Load(*tanksFile)
	if err != nil {
		return err
	}
	tank, ok := registry.Lookup(*tankID)
	if !ok {
		return fmt.Errorf("tank %q not found in %s", *tankID, *tanksFile)
	}

	opts := chartOptions{Step: *step}
	if *unit != "" {
		u, err := volume.ParseTemperatureUnit(*unit)
		if err != nil {
			return err
		}
		opts.Compensate = true
		opts.Temperature = *temperature
		opts.Unit = u
		opts.Compensator = volume.Compensator{BetaFahrenheit: *beta}
	}

	rows, err := buildChart(tank, opts)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if err := writeChart(w, rows); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	if *out != "" {
		log.Printf("wrote %d rows for tank %s to %s", len(rows), tank.ID, *out)
	}
	return nil
}
