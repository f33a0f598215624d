package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/techbeat/internal/config"
	"github.com/JonMunkholm/techbeat/internal/core"
	"github.com/JonMunkholm/techbeat/internal/logging"
	"github.com/JonMunkholm/techbeat/internal/metrics"
	"github.com/JonMunkholm/techbeat/internal/source"
	"github.com/JonMunkholm/techbeat/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"grid_source", cfg.Grid.Source,
		"max_concurrent_loads", cfg.Grid.MaxConcurrentLoads,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, closeSource, err := source.FromConfig(ctx, cfg)
	if err != nil {
		slog.Error("failed to set up grid source", "error", err)
		os.Exit(1)
	}
	defer closeSource()

	m := metrics.New()
	service := core.NewService(cfg.Grid, src, core.WithMetrics(m))
	server := web.NewServer(service, cfg, web.WithMetrics(m))

	if err := run(ctx, cfg, service, server); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// run serves until ctx is cancelled, then shuts the server down and drains
// in-flight loads within the configured timeout.
func run(ctx context.Context, cfg *config.Config, service *core.Service, server *web.Server) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		service.StartJanitor(gctx, core.JanitorConfig{
			IdleTTL:  cfg.Grid.ViewIdleTTL,
			Interval: cfg.Grid.JanitorInterval,
		})
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		return shutdown(shutdownCtx, server, service)
	})

	return g.Wait()
}

type stopper interface {
	Shutdown(ctx context.Context) error
}

type loadDrainer interface {
	LoadLimiterStatus() core.LoadLimiterStatus
	WaitForLoads(ctx context.Context) error
}

// shutdown stops the HTTP server before waiting on loads so no new view can
// start one while the drain is in progress.
func shutdown(ctx context.Context, server stopper, loads loadDrainer) error {
	err := server.Shutdown(ctx)

	if status := loads.LoadLimiterStatus(); status.Active > 0 {
		slog.Info("waiting for grid loads to complete", "active", status.Active)
	}
	if werr := loads.WaitForLoads(ctx); werr != nil {
		slog.Warn("grid loads did not complete in time", "error", werr)
	}
	return err
}
