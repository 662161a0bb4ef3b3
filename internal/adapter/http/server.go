package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/winds-aloft-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ForecastStore serves the cached forecast.
type ForecastStore interface {
	sharedobs.ReadinessChecker
	Forecast() domain.WindsAloftForecast
	Station(code string) (domain.StationForecast, bool)
}

// Server exposes health, readiness, metrics, and forecast HTTP endpoints.
type Server struct {
	httpServer *http.Server
	store      ForecastStore
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /v1/winds routes.
func NewServer(addr string, store ForecastStore, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		store:  store,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(store))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /v1/winds", s.handleForecast)
	mux.HandleFunc("GET /v1/winds/{station}", s.handleStation)

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

func (s *Server) handleForecast(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.store.Forecast())
}

// handleStation serves one station, or one altitude of it with ?altitude=.
func (s *Server) handleStation(w http.ResponseWriter, r *http.Request) {
	station, ok := s.store.Station(r.PathValue("station"))
	if !ok {
		writeError(w, http.StatusNotFound, "station not found")
		return
	}

	alt := r.URL.Query().Get("altitude")
	if alt == "" {
		sharedobs.WriteJSON(w, http.StatusOK, station)
		return
	}

	altitude, err := strconv.ParseUint(alt, 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid altitude")
		return
	}
	wind, ok := station.WindAt(uint32(altitude))
	if !ok {
		writeError(w, http.StatusNotFound, "no wind forecast at altitude")
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, wind)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
