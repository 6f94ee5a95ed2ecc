package memory

import (
	"context"
	"testing"
	"time"

	"ecotrack/internal/core"
)

func TestStore_AppendAndList(t *testing.T) {
	s := New()
	ctx := context.Background()

	at2024 := time.Date(2024, 12, 30, 10, 0, 0, 0, time.UTC)
	at2025 := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)

	ref, err := s.AppendEvent(ctx, core.ChargeEvent(core.OpCreated, core.RecurringCharge{ID: 1, Name: "Loyer", Amount: core.Money{Cents: 80000}}, at2024))
	if err != nil {
		t.Fatalf("AppendEvent() error = %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q, want mem:1", ref)
	}
	if _, err := s.AppendEvent(ctx, core.IncomeEvent(core.OpCreated, core.Income{ID: 1, Amount: core.Money{Cents: 1}}, at2025)); err != nil {
		t.Fatal(err)
	}

	got, _ := s.ListEvents(ctx, 2025)
	if len(got) != 1 || got[0].Kind != core.KindIncome {
		t.Errorf("ListEvents(2025) = %+v", got)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestStore_RejectsIncompleteEvents(t *testing.T) {
	if _, err := New().AppendEvent(context.Background(), core.LedgerEvent{ID: 1}); err == nil {
		t.Fatal("expected error for event without op and kind")
	}
}
