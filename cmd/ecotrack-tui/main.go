package main

import (
	"context"
	"fmt"
	"os"

	"ecotrack/internal/cli"
	applog "ecotrack/internal/log"
	"ecotrack/internal/services"
	"ecotrack/internal/tui"
)

// The terminal belongs to the UI, so logs go to a file.
const logFile = "ecotrack-tui.log"

func main() {
	cli.LoadEnvFile()

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", logFile, err)
		os.Exit(1)
	}
	defer f.Close()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentTUI, f)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	ledger := services.NewLedgerService(repo, nil,
		services.WithOverviewYears(cfg.OverviewYears),
		services.WithLogger(logger),
	)
	defer ledger.Close()

	if err := tui.Run(context.Background(), ledger, logger); err != nil {
		logger.Error("Terminal UI failed", applog.FieldError, err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
