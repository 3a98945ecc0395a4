// Package cli provides the startup helpers used by cmd/finboard.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finboard/internal/amqp"
	"finboard/internal/backend"
	"finboard/internal/config"
	applog "finboard/internal/log"
)

// SetupLogger builds the application logger at level and installs it as
// the slog default. Unknown levels fall back to info.
func SetupLogger(level string) *applog.Logger {
	lvl, err := applog.ParseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	cfg := applog.DefaultConfig()
	cfg.Level = lvl
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitBackend builds the configured data backend and, when AMQP_URL is set,
// wraps it so mutations publish transaction events. The returned closers
// must be closed on shutdown, in order. Exits the process on failure.
func InitBackend(ctx context.Context, logger *applog.Logger, cfg *config.Config) (backend.Backend, []io.Closer) {
	be, closers, err := buildBackend(ctx, logger, cfg, dialEvents)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	return be, closers
}

// eventDialer connects the transaction event publisher.
type eventDialer func(cfg *config.Config, logger *applog.Logger) (backend.EventSink, io.Closer, error)

func dialEvents(cfg *config.Config, logger *applog.Logger) (backend.EventSink, io.Closer, error) {
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return nil, nil, err
	}
	return client, client, nil
}

func buildBackend(ctx context.Context, logger *applog.Logger, cfg *config.Config, dial eventDialer) (backend.Backend, []io.Closer, error) {
	be, err := backend.NewFactory(logger).CreateBackend(ctx, backend.Config{
		Type:             backend.Type(cfg.DataBackend),
		BaseURL:          cfg.BackendURL,
		Timeout:          cfg.BackendTimeout,
		CategoryCacheTTL: cfg.CategoryCacheTTL,
		DataDirectory:    cfg.DataDirectory,
	})
	if err != nil {
		return nil, nil, err
	}

	var closers []io.Closer
	if c, ok := be.(io.Closer); ok {
		closers = append(closers, c)
	}
	if cfg.AMQPURL == "" {
		return be, closers, nil
	}

	sink, closer, err := dial(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect transaction events: %w", err)
	}
	notifying := backend.WithEvents(be, sink, logger)
	// Drain queued events before the publisher goes away.
	closers = append(closers, notifying, closer)
	logger.WithComponent(applog.ComponentEvents).Info("Publishing transaction events",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)
	return notifying, closers, nil
}

// GracefulShutdown cancels the returned context on SIGINT or SIGTERM, then
// runs cleanup bounded by timeout. done is closed once cleanup returns or
// the timeout expires.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received",
			applog.FieldOperation, applog.OpShutdown,
			"signal", sig.String())

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
			close(finished)
		}()

		select {
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached", "timeout", timeout)
		case <-finished:
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup ended.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
