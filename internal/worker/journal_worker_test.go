package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecotrack/internal/core"
	applog "ecotrack/internal/log"
	"ecotrack/internal/sheets/memory"
)

type flakyJournal struct {
	failures int
	calls    int
	inner    *memory.Store
}

func (f *flakyJournal) AppendEvent(ctx context.Context, ev core.LedgerEvent) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", errors.New("sheets unavailable")
	}
	return f.inner.AppendEvent(ctx, ev)
}

func testEvent() core.LedgerEvent {
	return core.ExpenseEvent(core.OpCreated, core.Expense{
		ID:          1,
		Date:        core.NewDate(2025, 1, 3),
		Description: "Groceries",
		Amount:      core.Money{Cents: 4250},
		Category:    "Alimentation",
	}, time.Date(2025, 1, 3, 10, 0, 0, 0, time.UTC))
}

func TestJournalWorker_HandleEvent(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		failures  int
		wantErr   bool
		wantCalls int
		wantRows  int
	}{
		{"first try", 0, false, 1, 1},
		{"recovers after retry", 2, false, 3, 1},
		{"gives up", 5, true, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := &flakyJournal{failures: tt.failures, inner: memory.New()}
			w := NewJournalWorker(j, applog.Discard(), WithRetry(3, 0))

			err := w.HandleEvent(ctx, testEvent())
			if (err != nil) != tt.wantErr {
				t.Fatalf("HandleEvent() error = %v, wantErr %v", err, tt.wantErr)
			}
			if j.calls != tt.wantCalls {
				t.Errorf("append calls = %d, want %d", j.calls, tt.wantCalls)
			}
			if j.inner.Len() != tt.wantRows {
				t.Errorf("journal rows = %d, want %d", j.inner.Len(), tt.wantRows)
			}

			appended, failed := w.Stats()
			if tt.wantErr && failed != 1 || !tt.wantErr && appended != 1 {
				t.Errorf("Stats() = %d, %d", appended, failed)
			}
		})
	}
}

func TestJournalWorker_CancelledContextStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	j := &flakyJournal{failures: 10, inner: memory.New()}
	w := NewJournalWorker(j, applog.Discard(), WithRetry(5, time.Hour))

	err := w.HandleEvent(ctx, testEvent())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("HandleEvent() error = %v, want context.Canceled", err)
	}
	if j.calls != 1 {
		t.Errorf("append calls = %d, want 1", j.calls)
	}
}

func TestJournalWorker_EventsReadBack(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	w := NewJournalWorker(store, applog.Discard())

	ev := testEvent()
	del := ev
	del.Op = core.OpDeleted
	for _, e := range []core.LedgerEvent{ev, del} {
		if err := w.HandleEvent(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.ListEvents(ctx, 2025)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].Op != core.OpDeleted || got[0].Label != "Groceries" {
		t.Errorf("ListEvents() = %+v", got)
	}
}
