package memory

import (
	"context"
	"fmt"
	"sync"

	"ecotrack/internal/core"
	"ecotrack/internal/sheets"
)

var (
	_ sheets.JournalWriter = (*Store)(nil)
	_ sheets.JournalReader = (*Store)(nil)
)

// Store is an in-process journal used in development and tests.
type Store struct {
	mu     sync.Mutex
	events []core.LedgerEvent
}

func New() *Store {
	return &Store{}
}

// AppendEvent stores the event and returns a synthetic row reference.
func (s *Store) AppendEvent(_ context.Context, ev core.LedgerEvent) (string, error) {
	if ev.Kind == "" || ev.Op == "" {
		return "", fmt.Errorf("incomplete ledger event: op=%q kind=%q", ev.Op, ev.Kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return fmt.Sprintf("mem:%d", len(s.events)), nil
}

// ListEvents returns events that occurred in year, oldest first.
func (s *Store) ListEvents(_ context.Context, year int) ([]core.LedgerEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.LedgerEvent
	for _, ev := range s.events {
		if ev.OccurredAt.Year() == year {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}
