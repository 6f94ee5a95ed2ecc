package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"ecotrack/internal/backend"
	"ecotrack/internal/cli"
	apphttp "ecotrack/internal/http"
	applog "ecotrack/internal/log"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentApp, nil)
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}

	ledger, err := backend.NewFactory(logger).NewLedger(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize ledger", applog.FieldError, err)
		os.Exit(1)
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, ledger.Service, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CacheTTL:           cfg.CacheTTL,
		Logger:             logger,
	})
	if err != nil {
		logger.Error("Failed to build HTTP server", applog.FieldError, err)
		_ = ledger.Cleanup()
		os.Exit(1)
	}

	_, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if err := ledger.Cleanup(); err != nil {
			logger.Error("Ledger cleanup error", applog.FieldError, err)
		}
	})

	logger.Info("Starting ecotrack server",
		applog.FieldOperation, applog.OpStartup,
		"port", cfg.Port,
		"amqp_enabled", ledger.Publisher != nil,
		"overview_years", cfg.OverviewYears,
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		_ = ledger.Cleanup()
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
