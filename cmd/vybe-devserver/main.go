// Command vybe-devserver serves the auth API from memory for local development.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pscheid92/vybe/internal/config"
	"github.com/pscheid92/vybe/internal/devserver"
	"github.com/pscheid92/vybe/internal/logging"
	"github.com/pscheid92/vybe/internal/metrics"
	"github.com/pscheid92/vybe/internal/platform/version"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx); err != nil {
		slog.Error("Dev server failed", "error", err)
		os.Exit(1)
	}
}

// serve runs the dev server until ctx is cancelled, then drains it.
func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Dev server starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Version)

	srv, err := devserver.NewServer(cfg, devserver.WithRegistry(metrics.NewRegistry()))
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutdown signal received, draining connections")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("Dev server stopped")
	return <-errCh
}
