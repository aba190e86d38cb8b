// Command trackd serves ATCF storm tracks over HTTP: fort.22 renderings,
// summaries, and GeoJSON isotach and wind swath geometry.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/storm-vortex-track/internal/adapter/http"
	"github.com/couchcryptid/storm-vortex-track/internal/adapter/nhc"
	"github.com/couchcryptid/storm-vortex-track/internal/config"
	"github.com/couchcryptid/storm-vortex-track/internal/observability"
	"github.com/couchcryptid/storm-vortex-track/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := nhc.NewClient(cfg.NHCBaseURL, cfg.NHCTimeout, metrics, logger)
	source, err := nhc.NewCachedProvider(client, cfg.NHCCacheSize, cfg.NHCCacheTTL, clockwork.NewRealClock(), metrics)
	if err != nil {
		logger.Error("failed to create deck cache", "error", err)
		os.Exit(1)
	}
	logger.Info("nhc source configured", "base_url", cfg.NHCBaseURL,
		"cache_size", cfg.NHCCacheSize, "cache_ttl", cfg.NHCCacheTTL)

	loader := pipeline.ProviderLoader{Provider: source, Resolver: source, Logger: logger}
	srv := httpadapter.NewServer(cfg.HTTPAddr, client, loader, cfg.IsotachSegments, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
