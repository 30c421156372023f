// Command verify checks the level model against its geometric and thermal
// properties and, optionally, against a configured tank file and a reference
// strapping chart. Each phase reports PASS or FAIL.
//
// Usage:
//
//	go run ./cmd/verify
//	go run ./cmd/verify -tanks tanks.yaml
//	go run ./cmd/verify -tanks tanks.yaml -tank backyard -chart backyard.csv -tolerance 0.5
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/tank-level-service/internal/tanks"
	"github.com/couchcryptid/tank-level-service/internal/volume"
)

// phase tracks pass/fail for a verification phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	tanksFile := flag.String("tanks", "", "optional tank file to check")
	tankID := flag.String("tank", "", "tank to compare against -chart")
	chartPath := flag.String("chart", "", "optional reference strapping chart CSV (height,percentage)")
	tolerance := flag.Float64("tolerance", 0.5, "allowed difference in percentage points against -chart")
	beta := flag.Float64("beta", volume.DefaultBetaFahrenheit, "expansion coefficient per °F")
	flag.Parse()

	if *chartPath != "" && (*tanksFile == "" || *tankID == "") {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*tanksFile, *tankID, *chartPath, *tolerance, volume.Compensator{BetaFahrenheit: *beta}))
}

func run(tanksFile, tankID, chartPath string, tolerance float64, comp volume.Compensator) int {
	phases := []*phase{
		verifyCylinderBoundaries(),
		verifyScaleInvariance(),
		verifySymmetry(),
		verifyMonotonic(),
		verifySegmentArea(),
		verifyHeadVolume(),
		verifyThermal(comp),
	}

	var registry *tanks.Registry
	if tanksFile != "" {
		r, err := tanks.Load(tanksFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			return 1
		}
		registry = r
		phases = append(phases, verifyTankFile(registry))
	}

	if chartPath != "" {
		tank, ok := registry.Lookup(tankID)
		if !ok {
			fmt.Fprintf(os.Stderr, "FATAL: tank %q not found in %s\n", tankID, tanksFile)
			return 1
		}
		rows, err := loadReferenceChart(chartPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			return 1
		}
		phases = append(phases, verifyReferenceChart(tank, rows, tolerance))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	if registry != nil {
		fmt.Println()
		fmt.Printf("Tanks: %d configured\n", registry.Len())
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll checks passed.")
		return 0
	}
	fmt.Println("\nVerification FAILED.")
	return 1
}
