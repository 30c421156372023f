package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/tank-level-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/tank-level-service/internal/adapter/kafka"
	"github.com/couchcryptid/tank-level-service/internal/config"
	"github.com/couchcryptid/tank-level-service/internal/observability"
	"github.com/couchcryptid/tank-level-service/internal/pipeline"
	"github.com/couchcryptid/tank-level-service/internal/state"
	"github.com/couchcryptid/tank-level-service/internal/tanks"
	"github.com/couchcryptid/tank-level-service/internal/volume"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	registry, err := tanks.Load(cfg.TanksFile)
	if err != nil {
		logger.Error("failed to load tanks", "file", cfg.TanksFile, "error", err)
		os.Exit(1)
	}
	metrics.TanksConfigured.Set(float64(registry.Len()))
	for _, tank := range registry.All() {
		logger.Info("tank configured",
			"tank_id", tank.ID,
			"source_entity", tank.SourceEntity,
			"temperature_entity", tank.TemperatureEntity,
			"capacity", tank.Capacity,
			"end_cap", tank.EndCap,
			"diameter", tank.Diameter,
			"cylinder_length", tank.CylinderLength,
		)
	}
	if tracked := 2 * registry.Len(); cfg.StateCacheSize < tracked {
		logger.Warn("state cache smaller than the number of tracked entities",
			"state_cache_size", cfg.StateCacheSize, "tracked_entities_max", tracked)
	}

	store := state.NewStore(cfg.StateCacheSize, metrics)
	compensator := volume.Compensator{BetaFahrenheit: cfg.ExpansionCoefficientF}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(registry, store, compensator, logger, metrics)
	transformer.Seed()

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, registry, store, compensator, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start level pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
