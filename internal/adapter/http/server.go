package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/storm-vortex-track/internal/observability"
	"github.com/couchcryptid/storm-vortex-track/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes track views alongside health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	tracks     pipeline.TrackLoader
	segments   int
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /tracks/{storm}/... routes. segments is the default isotach arc resolution.
func NewServer(addr string, ready sharedobs.ReadinessChecker, tracks pipeline.TrackLoader, segments int, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		tracks:   tracks,
		segments: segments,
		metrics:  metrics,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /tracks/{storm}/fort22", s.handleFort22)
	mux.HandleFunc("GET /tracks/{storm}/summary", s.handleSummary)
	mux.HandleFunc("GET /tracks/{storm}/line", s.handleLine)
	mux.HandleFunc("GET /tracks/{storm}/isotachs", s.handleIsotachs)
	mux.HandleFunc("GET /tracks/{storm}/swath", s.handleSwath)

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
