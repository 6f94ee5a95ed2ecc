package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"ecotrack/internal/core"
	applog "ecotrack/internal/log"
	"ecotrack/internal/storage"
)

// DefaultOverviewYears is how many calendar years the annual overview offers,
// counting the current one.
const DefaultOverviewYears = 5

// EventPublisher ships ledger events to whatever journals them.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev core.LedgerEvent) error
}

// LedgerService owns the period rules: which rows fall in a period, when
// recurring charges apply, and what the annual totals are.
type LedgerService struct {
	storage       *storage.SQLiteRepository
	publisher     EventPublisher
	clock         core.Clock
	overviewYears int
	logger        *applog.Logger
}

type Option func(*LedgerService)

// WithClock pins "today" for the service.
func WithClock(c core.Clock) Option {
	return func(s *LedgerService) { s.clock = c }
}

func WithLogger(l *applog.Logger) Option {
	return func(s *LedgerService) {
		if l != nil {
			s.logger = l.WithComponent(applog.ComponentLedger)
		}
	}
}

func WithOverviewYears(n int) Option {
	return func(s *LedgerService) {
		if n > 0 {
			s.overviewYears = n
		}
	}
}

// NewLedgerService wires the service. publisher may be nil.
func NewLedgerService(storage *storage.SQLiteRepository, publisher EventPublisher, opts ...Option) *LedgerService {
	s := &LedgerService{
		storage:       storage,
		publisher:     publisher,
		clock:         core.SystemClock,
		overviewYears: DefaultOverviewYears,
		logger:        applog.New(applog.Config{Handler: slog.Default().Handler(), Component: applog.ComponentLedger}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LedgerService) Today() core.Date {
	return s.clock.Today()
}

func (s *LedgerService) CurrentPeriod() core.Period {
	return core.PeriodContaining(s.Today())
}

// ResolvePeriodStart turns a user supplied start into a valid period start.
// Empty means the current period; starts after the current one clamp to it.
func (s *LedgerService) ResolvePeriodStart(raw string) (core.Date, error) {
	current := s.CurrentPeriod().Start
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return current, nil
	}
	start, err := core.ParseDate(raw)
	if err != nil {
		return core.Date{}, err
	}
	if !core.IsPeriodStart(start) {
		return core.Date{}, core.ErrInvalidPeriodStart
	}
	if start.After(current) {
		return current, nil
	}
	return start, nil
}

func (s *LedgerService) AddIncome(ctx context.Context, in core.Income) (core.Income, error) {
	in.Description = strings.TrimSpace(in.Description)
	if err := in.Validate(s.Today()); err != nil {
		return core.Income{}, fmt.Errorf("add income: %w", err)
	}
	saved, err := s.storage.AddIncome(ctx, in)
	if err != nil {
		return core.Income{}, err
	}
	s.publish(ctx, core.IncomeEvent(core.OpCreated, saved, s.clock()))
	return saved, nil
}

func (s *LedgerService) ListIncomes(ctx context.Context) (core.IncomeSummary, error) {
	var summary core.IncomeSummary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		incomes, err := s.storage.ListIncomes(gctx)
		summary.Incomes = incomes
		return err
	})
	g.Go(func() error {
		total, err := s.storage.TotalIncome(gctx)
		summary.Total = total
		return err
	})
	if err := g.Wait(); err != nil {
		return core.IncomeSummary{}, err
	}
	return summary, nil
}

func (s *LedgerService) AddRecurringCharge(ctx context.Context, c core.RecurringCharge) (core.RecurringCharge, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.RecurringCharge{}, fmt.Errorf("add recurring charge: %w", err)
	}
	saved, err := s.storage.AddRecurringCharge(ctx, c)
	if err != nil {
		return core.RecurringCharge{}, err
	}
	s.publish(ctx, core.ChargeEvent(core.OpCreated, saved, s.clock()))
	return saved, nil
}

func (s *LedgerService) UpdateRecurringCharge(ctx context.Context, c core.RecurringCharge) (core.RecurringCharge, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.RecurringCharge{}, fmt.Errorf("update recurring charge: %w", err)
	}
	saved, err := s.storage.UpdateRecurringCharge(ctx, c)
	if err != nil {
		return core.RecurringCharge{}, err
	}
	s.publish(ctx, core.ChargeEvent(core.OpUpdated, saved, s.clock()))
	return saved, nil
}

func (s *LedgerService) DeleteRecurringCharge(ctx context.Context, id int64) error {
	deleted, err := s.storage.DeleteRecurringCharge(ctx, id)
	if err != nil {
		return err
	}
	s.publish(ctx, core.ChargeEvent(core.OpDeleted, deleted, s.clock()))
	return nil
}

// RecurringCharges lists every charge with their monthly total.
func (s *LedgerService) RecurringCharges(ctx context.Context) ([]core.RecurringCharge, core.Money, error) {
	charges, err := s.storage.ListRecurringCharges(ctx)
	if err != nil {
		return nil, core.Money{}, err
	}
	var total core.Money
	for _, c := range charges {
		total = total.Add(c.Amount)
	}
	return charges, total, nil
}

func (s *LedgerService) Categories(ctx context.Context) ([]core.ExpenseCategory, error) {
	return s.storage.ListCategories(ctx)
}

// AddExpense records an expense. A zero date means today.
func (s *LedgerService) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if e.Date.IsZero() {
		e.Date = s.Today()
	}
	if err := s.checkExpense(ctx, &e); err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}
	saved, err := s.storage.AddExpense(ctx, e)
	if err != nil {
		return core.Expense{}, err
	}
	s.publish(ctx, core.ExpenseEvent(core.OpCreated, saved, s.clock()))
	return saved, nil
}

// UpdateExpense rewrites an expense. A zero date keeps the stored one.
func (s *LedgerService) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if e.Date.IsZero() {
		existing, err := s.storage.GetExpense(ctx, e.ID)
		if err != nil {
			return core.Expense{}, err
		}
		e.Date = existing.Date
	}
	if err := s.checkExpense(ctx, &e); err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	saved, err := s.storage.UpdateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, err
	}
	s.publish(ctx, core.ExpenseEvent(core.OpUpdated, saved, s.clock()))
	return saved, nil
}

func (s *LedgerService) DeleteExpense(ctx context.Context, id int64) error {
	deleted, err := s.storage.DeleteExpense(ctx, id)
	if err != nil {
		return err
	}
	s.publish(ctx, core.ExpenseEvent(core.OpDeleted, deleted, s.clock()))
	return nil
}

func (s *LedgerService) checkExpense(ctx context.Context, e *core.Expense) error {
	e.Description = strings.TrimSpace(e.Description)
	if err := e.Validate(s.Today()); err != nil {
		return err
	}
	if e.CategoryID != nil {
		if _, err := s.storage.GetCategory(ctx, *e.CategoryID); err != nil {
			return err
		}
	}
	return nil
}

// PeriodBalance is incomes minus regular expenses of the period starting at
// start, minus the recurring charges when that period is the current one.
func (s *LedgerService) PeriodBalance(ctx context.Context, start core.Date) (core.Money, error) {
	end := core.PeriodEnd(start)

	income, err := s.storage.IncomeBetween(ctx, start, end)
	if err != nil {
		return core.Money{}, err
	}
	expenses, err := s.storage.ExpensesBetween(ctx, start, end, false)
	if err != nil {
		return core.Money{}, err
	}
	balance := income.Sub(expenses)

	if start.Equal(core.CurrentPeriodStart(s.Today())) {
		charges, err := s.storage.RecurringChargesTotal(ctx)
		if err != nil {
			return core.Money{}, err
		}
		balance = balance.Sub(charges)
	}
	return balance, nil
}

func (s *LedgerService) HasPeriodData(ctx context.Context, from, to core.Date) (bool, error) {
	return s.storage.HasDataBetween(ctx, from, to)
}

func (s *LedgerService) AnnualIncome(ctx context.Context, from, to core.Date) (core.Money, error) {
	return s.storage.IncomeBetween(ctx, from, to)
}

// AnnualExpenses sums the regular expenses in [from, to]. Recurring charges
// are added once, and only when from is in this calendar year and the
// current period starts inside the range.
func (s *LedgerService) AnnualExpenses(ctx context.Context, from, to core.Date) (core.Money, error) {
	total, err := s.storage.ExpensesBetween(ctx, from, to, false)
	if err != nil {
		return core.Money{}, err
	}
	today := s.Today()
	current := core.CurrentPeriodStart(today)
	if from.Year() == today.Year() && !current.Before(from) && !current.After(to) {
		charges, err := s.storage.RecurringChargesTotal(ctx)
		if err != nil {
			return core.Money{}, err
		}
		total = total.Add(charges)
	}
	return total, nil
}

func (s *LedgerService) ExceptionalExpenses(ctx context.Context, from, to core.Date) (core.Money, error) {
	return s.storage.ExpensesBetween(ctx, from, to, true)
}

// OverviewYears lists the selectable years, oldest first.
func (s *LedgerService) OverviewYears() []int {
	current := s.Today().Year()
	years := make([]int, 0, s.overviewYears)
	for y := current - s.overviewYears + 1; y <= current; y++ {
		years = append(years, y)
	}
	return years
}

func (s *LedgerService) AnnualOverview(ctx context.Context, year int) (core.AnnualOverview, error) {
	from, to := core.YearRange(year)
	ov := core.AnnualOverview{Year: year}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ov.Income, err = s.AnnualIncome(gctx, from, to)
		return err
	})
	g.Go(func() (err error) {
		ov.Expenses, err = s.AnnualExpenses(gctx, from, to)
		return err
	})
	g.Go(func() (err error) {
		ov.Exceptional, err = s.ExceptionalExpenses(gctx, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.AnnualOverview{}, fmt.Errorf("annual overview %d: %w", year, err)
	}

	// Exceptional expenses are reported beside the balance, never in it.
	ov.Balance = ov.Income.Sub(ov.Expenses)
	return ov, nil
}

// Overviews computes every selectable year, oldest first.
func (s *LedgerService) Overviews(ctx context.Context) ([]core.AnnualOverview, error) {
	years := s.OverviewYears()
	out := make([]core.AnnualOverview, len(years))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, year := range years {
		g.Go(func() error {
			ov, err := s.AnnualOverview(gctx, year)
			out[i] = ov
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// CanGoNext reports whether the period after start is not in the future.
func (s *LedgerService) CanGoNext(start core.Date) bool {
	return !core.NextPeriodStart(start).After(core.CurrentPeriodStart(s.Today()))
}

// CanGoPrevious reports whether the period before start holds any data.
func (s *LedgerService) CanGoPrevious(ctx context.Context, start core.Date) (bool, error) {
	prev := core.PreviousPeriodStart(start)
	return s.storage.HasDataBetween(ctx, prev, core.PeriodEnd(prev))
}

// PeriodView gathers everything needed to display the period starting at start.
func (s *LedgerService) PeriodView(ctx context.Context, start core.Date, filter core.ExpenseFilter) (*core.PeriodView, error) {
	period, err := core.PeriodStarting(start)
	if err != nil {
		return nil, err
	}
	view := &core.PeriodView{
		Period:    period,
		Current:   start.Equal(core.CurrentPeriodStart(s.Today())),
		CanGoNext: s.CanGoNext(start),
		Filter:    filter,
	}
	prev := period.Previous()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		view.Balance, err = s.PeriodBalance(gctx, period.Start)
		return err
	})
	g.Go(func() error {
		has, err := s.storage.HasDataBetween(gctx, prev.Start, prev.End)
		if err != nil {
			return err
		}
		view.CanGoPrevious = has
		view.FirstPeriod = !has
		if !has {
			return nil
		}
		view.PreviousBalance, err = s.PeriodBalance(gctx, prev.Start)
		return err
	})
	g.Go(func() (err error) {
		view.Charges, view.ChargesTotal, err = s.RecurringCharges(gctx)
		return err
	})
	g.Go(func() (err error) {
		view.Expenses, err = s.storage.ListExpenses(gctx, period.Start, period.End, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("period view %s: %w", start, err)
	}

	if filter.CategoryID != nil {
		var total core.Money
		for _, e := range view.Expenses {
			total = total.Add(e.Amount)
		}
		view.FilteredTotal = &total
	}
	return view, nil
}

func (s *LedgerService) ExceptionalView(ctx context.Context, start core.Date) (*core.ExceptionalView, error) {
	period, err := core.PeriodStarting(start)
	if err != nil {
		return nil, err
	}
	expenses, err := s.storage.ListExceptionalExpenses(ctx, period.Start, period.End)
	if err != nil {
		return nil, err
	}
	view := &core.ExceptionalView{Period: period, Expenses: expenses}
	for _, e := range expenses {
		view.Total = view.Total.Add(e.Amount)
	}
	return view, nil
}

func (s *LedgerService) Ping(ctx context.Context) error {
	return s.storage.Ping(ctx)
}

// publish logs the write and ships its event. Publishing is best effort:
// the write already succeeded locally.
func (s *LedgerService) publish(ctx context.Context, ev core.LedgerEvent) {
	applog.LogLedgerWrite(ctx, s.logger, ev)
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, ev); err != nil {
		args := append(applog.NewFields().WithEvent(ev).ToSlice(), applog.FieldError, err)
		if errors.Is(err, context.Canceled) {
			s.logger.WarnContext(ctx, "Failed to publish ledger event", args...)
			return
		}
		s.logger.ErrorContext(ctx, "Failed to publish ledger event", args...)
	}
}

// Close closes the underlying store.
func (s *LedgerService) Close() error {
	if s.storage == nil {
		return nil
	}
	if err := s.storage.Close(); err != nil {
		return fmt.Errorf("close ledger storage: %w", err)
	}
	return nil
}
