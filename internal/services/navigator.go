package services

import (
	"context"
	"sync"

	"ecotrack/internal/core"
)

// Navigator tracks which period a screen is showing.
type Navigator struct {
	ledger *LedgerService

	mu        sync.Mutex
	displayed core.Date
}

func NewNavigator(ledger *LedgerService) *Navigator {
	return &Navigator{ledger: ledger, displayed: ledger.CurrentPeriod().Start}
}

// Displayed returns the start of the period on screen.
func (n *Navigator) Displayed() core.Date {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.displayed
}

// Previous steps back one period. It is never refused; screens disable the
// control using CanGoPrevious instead.
func (n *Navigator) Previous() core.Date {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.displayed = core.PreviousPeriodStart(n.displayed)
	return n.displayed
}

// Next steps forward one period unless that would pass the current one.
// It reports whether it moved.
func (n *Navigator) Next() (core.Date, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.ledger.CanGoNext(n.displayed) {
		return n.displayed, false
	}
	n.displayed = core.NextPeriodStart(n.displayed)
	return n.displayed, true
}

// Reset jumps back to the current period.
func (n *Navigator) Reset() core.Date {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.displayed = n.ledger.CurrentPeriod().Start
	return n.displayed
}

func (n *Navigator) CanGoPrevious(ctx context.Context) (bool, error) {
	return n.ledger.CanGoPrevious(ctx, n.Displayed())
}

func (n *Navigator) CanGoNext() bool {
	return n.ledger.CanGoNext(n.Displayed())
}

// View loads the displayed period.
func (n *Navigator) View(ctx context.Context, filter core.ExpenseFilter) (*core.PeriodView, error) {
	return n.ledger.PeriodView(ctx, n.Displayed(), filter)
}

// Exceptional loads the exceptional expenses of the displayed period.
func (n *Navigator) Exceptional(ctx context.Context) (*core.ExceptionalView, error) {
	return n.ledger.ExceptionalView(ctx, n.Displayed())
}
