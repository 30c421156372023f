package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/tank-level-service/internal/domain"
	"github.com/couchcryptid/tank-level-service/internal/volume"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TankCatalog lists the configured tanks.
type TankCatalog interface {
	All() []domain.TankConfig
	Lookup(id string) (domain.TankConfig, bool)
}

// LevelSource returns the latest computed level of a tank.
type LevelSource interface {
	Level(tankID string) (domain.LevelEvent, bool)
}

// Server exposes health, readiness, metrics and tank level HTTP endpoints.
type Server struct {
	httpServer  *http.Server
	logger      *slog.Logger
	tanks       TankCatalog
	levels      LevelSource
	compensator volume.Compensator
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, /tanks,
// /tanks/{id} and /v1/fill routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, tanks TankCatalog, levels LevelSource, compensator volume.Compensator, logger *slog.Logger) *Server {
	router := httprouter.New()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:      logger,
		tanks:       tanks,
		levels:      levels,
		compensator: compensator,
	}

	router.HandlerFunc(http.MethodGet, "/healthz", sharedobs.LivenessHandler())
	router.HandlerFunc(http.MethodGet, "/readyz", sharedobs.ReadinessHandler(ready))
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())
	router.HandlerFunc(http.MethodGet, "/tanks", s.handleListTanks)
	router.HandlerFunc(http.MethodGet, "/tanks/:id", s.handleGetTank)
	router.HandlerFunc(http.MethodPost, "/v1/fill", s.handleFill)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
