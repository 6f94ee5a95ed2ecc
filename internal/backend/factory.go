package backend

import (
	"context"
	"errors"
	"fmt"

	"ecotrack/internal/amqp"
	applog "ecotrack/internal/log"
	"ecotrack/internal/services"
	gsheet "ecotrack/internal/sheets/google"
	"ecotrack/internal/sheets/memory"
	"ecotrack/internal/storage"
)

type Factory struct {
	logger *applog.Logger
}

func NewFactory(logger *applog.Logger) *Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Factory{logger: logger.WithComponent(applog.ComponentApp)}
}

// NewLedger opens the database and, when configured, an AMQP publisher.
// A broker that cannot be reached at start-up is logged and skipped: writes
// must keep working without it.
func (f *Factory) NewLedger(ctx context.Context, config Config, opts ...services.Option) (*Ledger, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	var client *amqp.Client
	if config.AMQPURL != "" {
		client, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without journal events", applog.FieldError, err)
			client = nil
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client", "exchange", config.AMQPExchange, "queue", config.AMQPQueue)
		}
	}

	base := []services.Option{services.WithLogger(f.logger)}
	if config.OverviewYears > 0 {
		base = append(base, services.WithOverviewYears(config.OverviewYears))
	}
	opts = append(base, opts...)

	// A nil *amqp.Client must not become a non-nil interface.
	var publisher services.EventPublisher
	if client != nil {
		publisher = client
	}
	svc := services.NewLedgerService(repo, publisher, opts...)

	f.logger.InfoContext(ctx, "Initialized ledger", "db_path", config.SQLiteDBPath, "amqp_enabled", client != nil)

	return &Ledger{
		Service:   svc,
		Publisher: client,
		Cleanup: func() error {
			var errs []error
			if client != nil {
				errs = append(errs, client.Close())
			}
			errs = append(errs, svc.Close())
			return errors.Join(errs...)
		},
	}, nil
}

// NewJournal builds the journal the worker appends events to.
func (f *Factory) NewJournal(ctx context.Context, config Config) (Journal, error) {
	switch config.Journal {
	case SheetsJournal:
		client, err := gsheet.New(ctx, gsheet.Options{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			JournalSheet:    config.GoogleJournalSheet,
			CredentialsJSON: config.GoogleServiceAccountJSON,
			CredentialsFile: config.GoogleServiceAccountFile,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets journal: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized Google Sheets journal", "sheet", config.GoogleJournalSheet)
		return client, nil
	case MemoryJournal:
		f.logger.InfoContext(ctx, "Initialized in-memory journal")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported journal backend: %s", config.Journal)
	}
}
