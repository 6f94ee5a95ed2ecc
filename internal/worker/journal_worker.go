// Package worker turns ledger events from the queue into journal rows.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"ecotrack/internal/core"
	applog "ecotrack/internal/log"
	"ecotrack/internal/sheets"
)

const (
	defaultAttempts  = 3
	defaultRetryWait = 500 * time.Millisecond
)

// JournalWorker appends each ledger event to a journal. Events carry the
// full row, so the worker never reads the ledger database.
type JournalWorker struct {
	journal   sheets.JournalWriter
	logger    *applog.Logger
	attempts  int
	retryWait time.Duration

	appended atomic.Int64
	failed   atomic.Int64
}

type Option func(*JournalWorker)

// WithRetry sets how many times an append is tried before the event goes
// back to the queue.
func WithRetry(attempts int, wait time.Duration) Option {
	return func(w *JournalWorker) {
		if attempts > 0 {
			w.attempts = attempts
		}
		if wait >= 0 {
			w.retryWait = wait
		}
	}
}

func NewJournalWorker(journal sheets.JournalWriter, logger *applog.Logger, opts ...Option) *JournalWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	w := &JournalWorker{
		journal:   journal,
		logger:    logger.WithComponent(applog.ComponentWorker),
		attempts:  defaultAttempts,
		retryWait: defaultRetryWait,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// HandleEvent matches amqp.Handler. A returned error requeues the message.
func (w *JournalWorker) HandleEvent(ctx context.Context, ev core.LedgerEvent) error {
	fields := applog.NewFields().WithEvent(ev)

	var lastErr error
	for attempt := 1; attempt <= w.attempts; attempt++ {
		ref, err := w.journal.AppendEvent(ctx, ev)
		if err == nil {
			w.appended.Add(1)
			w.logger.InfoContext(ctx, "Ledger event journaled", append(fields.ToSlice(), applog.FieldJournalRef, ref)...)
			return nil
		}
		lastErr = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || attempt == w.attempts {
			break
		}

		wait := w.retryWait * time.Duration(attempt)
		w.logger.WarnContext(ctx, "Journal append failed, retrying",
			append(fields.ToSlice(), applog.FieldError, err, "attempt", attempt, "wait", wait)...)
		select {
		case <-ctx.Done():
			lastErr = ctx.Err()
		case <-time.After(wait):
			continue
		}
		break
	}

	w.failed.Add(1)
	w.logger.ErrorContext(ctx, "Failed to journal ledger event", append(fields.ToSlice(), applog.FieldError, lastErr)...)
	return fmt.Errorf("journal %s %s %d: %w", ev.Op, ev.Kind, ev.ID, lastErr)
}

// Stats returns how many events were journaled and how many gave up.
func (w *JournalWorker) Stats() (appended, failed int64) {
	return w.appended.Load(), w.failed.Load()
}
