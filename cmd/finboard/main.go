package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finboard/internal/cli"
	apphttp "finboard/internal/http"
	applog "finboard/internal/log"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger("info")
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel)

	be, closers := cli.InitBackend(context.Background(), logger, cfg)

	srv, err := apphttp.NewServer(":"+cfg.Port, be, be, apphttp.Options{
		Logger:            logger,
		RequestsPerMinute: cfg.RateLimitPerMinute,
	})
	if err != nil {
		logger.Error("Failed to initialize HTTP server", applog.FieldError, err)
		os.Exit(1)
	}

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		for _, c := range closers {
			if err := c.Close(); err != nil {
				logger.Error("Close error", applog.FieldError, err)
			}
		}
	})

	logger.Info("Starting finboard server",
		applog.FieldOperation, applog.OpStartup,
		"port", cfg.Port,
		"backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
