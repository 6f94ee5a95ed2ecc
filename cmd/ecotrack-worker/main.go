package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"ecotrack/internal/amqp"
	"ecotrack/internal/backend"
	"ecotrack/internal/cli"
	applog "ecotrack/internal/log"
	"ecotrack/internal/worker"
)

const statsInterval = 5 * time.Minute

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentWorker, nil)
	logger.Info("Starting ecotrack-worker", applog.FieldOperation, applog.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the journal worker")
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, nil)

	journal, err := backend.NewFactory(logger).NewJournal(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize journal", applog.FieldError, err)
		os.Exit(1)
	}
	w := worker.NewJournalWorker(journal, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqp.RunConsumer(gctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, w.HandleEvent)
	})
	g.Go(func() error {
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				appended, failed := w.Stats()
				logger.Info("Journal worker stats", "appended", appended, "failed", failed)
			}
		}
	})

	logger.Info("Consuming ledger events",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue,
		"journal", backendCfg.Journal,
	)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		os.Exit(1)
	}

	<-done
	appended, failed := w.Stats()
	logger.Info("Worker stopped", "appended", appended, "failed", failed)
}
