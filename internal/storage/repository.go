package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ecotrack/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists the ledger and answers the aggregation queries.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Migrations first: they need the file to themselves.
	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func dsn(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) AddIncome(ctx context.Context, in core.Income) (core.Income, error) {
	row, err := r.queries.CreateIncome(ctx, CreateIncomeParams{
		AmountCents: in.Amount.Cents,
		Description: in.Description,
		Date:        in.Date.String(),
	})
	if err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}

	slog.InfoContext(ctx, "Income saved to SQLite",
		"id", row.ID,
		"amount_cents", row.AmountCents,
		"date", row.Date)

	return toCoreIncome(row)
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context) ([]core.Income, error) {
	rows, err := r.queries.ListIncomes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	out := make([]core.Income, 0, len(rows))
	for _, row := range rows {
		in, err := toCoreIncome(row)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

func (r *SQLiteRepository) TotalIncome(ctx context.Context) (core.Money, error) {
	total, err := r.queries.SumIncomes(ctx)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum incomes: %w", err)
	}
	return core.Money{Cents: total}, nil
}

// IncomeBetween sums incomes dated within [from, to].
func (r *SQLiteRepository) IncomeBetween(ctx context.Context, from, to core.Date) (core.Money, error) {
	total, err := r.queries.SumIncomesBetween(ctx, dateRange(from, to))
	if err != nil {
		return core.Money{}, fmt.Errorf("sum incomes between %s and %s: %w", from, to, err)
	}
	return core.Money{Cents: total}, nil
}

func (r *SQLiteRepository) AddRecurringCharge(ctx context.Context, c core.RecurringCharge) (core.RecurringCharge, error) {
	row, err := r.queries.CreateRecurringCharge(ctx, CreateRecurringChargeParams{
		Name:        c.Name,
		AmountCents: c.Amount.Cents,
	})
	if err != nil {
		return core.RecurringCharge{}, fmt.Errorf("create recurring charge: %w", err)
	}
	slog.InfoContext(ctx, "Recurring charge saved to SQLite", "id", row.ID, "name", row.Name, "amount_cents", row.AmountCents)
	return toCoreCharge(row), nil
}

func (r *SQLiteRepository) UpdateRecurringCharge(ctx context.Context, c core.RecurringCharge) (core.RecurringCharge, error) {
	row, err := r.queries.UpdateRecurringCharge(ctx, UpdateRecurringChargeParams{
		Name:        c.Name,
		AmountCents: c.Amount.Cents,
		ID:          c.ID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringCharge{}, fmt.Errorf("recurring charge %d: %w", c.ID, core.ErrNotFound)
	}
	if err != nil {
		return core.RecurringCharge{}, fmt.Errorf("update recurring charge: %w", err)
	}
	slog.InfoContext(ctx, "Recurring charge updated", "id", row.ID, "amount_cents", row.AmountCents)
	return toCoreCharge(row), nil
}

// DeleteRecurringCharge removes the charge and returns what was deleted.
func (r *SQLiteRepository) DeleteRecurringCharge(ctx context.Context, id int64) (core.RecurringCharge, error) {
	row, err := r.queries.DeleteRecurringCharge(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringCharge{}, fmt.Errorf("recurring charge %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.RecurringCharge{}, fmt.Errorf("delete recurring charge: %w", err)
	}
	slog.InfoContext(ctx, "Recurring charge deleted", "id", id)
	return toCoreCharge(row), nil
}

func (r *SQLiteRepository) ListRecurringCharges(ctx context.Context) ([]core.RecurringCharge, error) {
	rows, err := r.queries.ListRecurringCharges(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recurring charges: %w", err)
	}
	out := make([]core.RecurringCharge, 0, len(rows))
	for _, row := range rows {
		out = append(out, toCoreCharge(row))
	}
	return out, nil
}

func (r *SQLiteRepository) RecurringChargesTotal(ctx context.Context) (core.Money, error) {
	total, err := r.queries.SumRecurringCharges(ctx)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum recurring charges: %w", err)
	}
	return core.Money{Cents: total}, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.ExpenseCategory, error) {
	rows, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.ExpenseCategory, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.ExpenseCategory{ID: row.ID, Name: row.Name})
	}
	return out, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.ExpenseCategory, error) {
	row, err := r.queries.GetCategory(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExpenseCategory{}, fmt.Errorf("category %d: %w", id, core.ErrUnknownCategory)
	}
	if err != nil {
		return core.ExpenseCategory{}, fmt.Errorf("get category: %w", err)
	}
	return core.ExpenseCategory{ID: row.ID, Name: row.Name}, nil
}

func (r *SQLiteRepository) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	row, err := r.queries.CreateExpense(ctx, CreateExpenseParams{
		Description:   e.Description,
		AmountCents:   e.Amount.Cents,
		Date:          e.Date.String(),
		CategoryID:    nullInt64(e.CategoryID),
		IsExceptional: e.Exceptional,
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", row.ID,
		"description", row.Description,
		"amount_cents", row.AmountCents,
		"date", row.Date,
		"exceptional", row.IsExceptional)

	return r.GetExpense(ctx, row.ID)
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	row, err := r.queries.UpdateExpense(ctx, UpdateExpenseParams{
		Description:   e.Description,
		AmountCents:   e.Amount.Cents,
		Date:          e.Date.String(),
		CategoryID:    nullInt64(e.CategoryID),
		IsExceptional: e.Exceptional,
		ID:            e.ID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %d: %w", e.ID, core.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	slog.InfoContext(ctx, "Expense updated", "id", row.ID, "amount_cents", row.AmountCents)
	return r.GetExpense(ctx, row.ID)
}

// DeleteExpense removes the expense and returns the row as it was.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) (core.Expense, error) {
	existing, err := r.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}
	affected, err := r.queries.DeleteExpense(ctx, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("delete expense: %w", err)
	}
	if affected == 0 {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return existing, nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row, err := r.queries.GetExpense(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return toCoreExpense(row)
}

// ListExpenses returns the expenses dated within [from, to], newest first,
// narrowed by filter.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, from, to core.Date, filter core.ExpenseFilter) ([]core.Expense, error) {
	rows, err := r.queries.ListExpensesBetween(ctx, ListExpensesBetweenParams{
		From:               from.String(),
		To:                 to.String(),
		IncludeExceptional: filter.IncludeExceptional,
		CategoryID:         nullInt64(filter.CategoryID),
	})
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return toCoreExpenses(rows)
}

func (r *SQLiteRepository) ListExceptionalExpenses(ctx context.Context, from, to core.Date) ([]core.Expense, error) {
	rows, err := r.queries.ListExceptionalExpensesBetween(ctx, dateRange(from, to))
	if err != nil {
		return nil, fmt.Errorf("list exceptional expenses: %w", err)
	}
	return toCoreExpenses(rows)
}

// ExpensesBetween sums either the regular or the exceptional expenses
// dated within [from, to].
func (r *SQLiteRepository) ExpensesBetween(ctx context.Context, from, to core.Date, exceptional bool) (core.Money, error) {
	total, err := r.queries.SumExpensesBetween(ctx, SumExpensesBetweenParams{
		From:          from.String(),
		To:            to.String(),
		IsExceptional: exceptional,
	})
	if err != nil {
		return core.Money{}, fmt.Errorf("sum expenses between %s and %s: %w", from, to, err)
	}
	return core.Money{Cents: total}, nil
}

// HasDataBetween reports whether any income or expense is dated within
// [from, to].
func (r *SQLiteRepository) HasDataBetween(ctx context.Context, from, to core.Date) (bool, error) {
	rng := dateRange(from, to)
	incomes, err := r.queries.IncomeExistsBetween(ctx, rng)
	if err != nil {
		return false, fmt.Errorf("check incomes: %w", err)
	}
	if incomes != 0 {
		return true, nil
	}
	expenses, err := r.queries.ExpenseExistsBetween(ctx, rng)
	if err != nil {
		return false, fmt.Errorf("check expenses: %w", err)
	}
	return expenses != 0, nil
}

func dateRange(from, to core.Date) DateRangeParams {
	return DateRangeParams{From: from.String(), To: to.String()}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func toCoreIncome(row Income) (core.Income, error) {
	d, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Income{}, fmt.Errorf("income %d has bad date %q: %w", row.ID, row.Date, err)
	}
	return core.Income{
		ID:          row.ID,
		Date:        d,
		Description: row.Description,
		Amount:      core.Money{Cents: row.AmountCents},
	}, nil
}

func toCoreCharge(row RecurringCharge) core.RecurringCharge {
	return core.RecurringCharge{
		ID:     row.ID,
		Name:   row.Name,
		Amount: core.Money{Cents: row.AmountCents},
	}
}

func toCoreExpense(row ExpenseWithCategory) (core.Expense, error) {
	d, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %d has bad date %q: %w", row.ID, row.Date, err)
	}
	e := core.Expense{
		ID:          row.ID,
		Date:        d,
		Description: row.Description,
		Amount:      core.Money{Cents: row.AmountCents},
		Exceptional: row.IsExceptional,
	}
	if row.CategoryID.Valid {
		id := row.CategoryID.Int64
		e.CategoryID = &id
		e.Category = row.CategoryName.String
	}
	return e, nil
}

func toCoreExpenses(rows []ExpenseWithCategory) ([]core.Expense, error) {
	out := make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		e, err := toCoreExpense(row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
