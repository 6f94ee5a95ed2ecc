package storage

import (
	"context"
	"database/sql"
)

const createIncome = `
INSERT INTO incomes (amount_cents, description, date)
VALUES (?, ?, ?)
RETURNING id, amount_cents, description, date, created_at
`

type CreateIncomeParams struct {
	AmountCents int64
	Description string
	Date        string
}

func (q *Queries) CreateIncome(ctx context.Context, arg CreateIncomeParams) (Income, error) {
	row := q.db.QueryRowContext(ctx, createIncome, arg.AmountCents, arg.Description, arg.Date)
	var i Income
	err := row.Scan(&i.ID, &i.AmountCents, &i.Description, &i.Date, &i.CreatedAt)
	return i, err
}

const listIncomes = `
SELECT id, amount_cents, description, date, created_at
FROM incomes
ORDER BY date DESC, id DESC
`

func (q *Queries) ListIncomes(ctx context.Context) ([]Income, error) {
	rows, err := q.db.QueryContext(ctx, listIncomes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Income
	for rows.Next() {
		var i Income
		if err := rows.Scan(&i.ID, &i.AmountCents, &i.Description, &i.Date, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumIncomes = `
SELECT COALESCE(SUM(amount_cents), 0) FROM incomes
`

func (q *Queries) SumIncomes(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, sumIncomes)
	var total int64
	err := row.Scan(&total)
	return total, err
}

type DateRangeParams struct {
	From string
	To   string
}

const sumIncomesBetween = `
SELECT COALESCE(SUM(amount_cents), 0)
FROM incomes
WHERE date BETWEEN ? AND ?
`

func (q *Queries) SumIncomesBetween(ctx context.Context, arg DateRangeParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, sumIncomesBetween, arg.From, arg.To)
	var total int64
	err := row.Scan(&total)
	return total, err
}

const incomeExistsBetween = `
SELECT EXISTS (SELECT 1 FROM incomes WHERE date BETWEEN ? AND ?)
`

func (q *Queries) IncomeExistsBetween(ctx context.Context, arg DateRangeParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, incomeExistsBetween, arg.From, arg.To)
	var exists int64
	err := row.Scan(&exists)
	return exists, err
}

const createRecurringCharge = `
INSERT INTO recurring_charges (name, amount_cents)
VALUES (?, ?)
RETURNING id, name, amount_cents, created_at, updated_at
`

type CreateRecurringChargeParams struct {
	Name        string
	AmountCents int64
}

func (q *Queries) CreateRecurringCharge(ctx context.Context, arg CreateRecurringChargeParams) (RecurringCharge, error) {
	row := q.db.QueryRowContext(ctx, createRecurringCharge, arg.Name, arg.AmountCents)
	var i RecurringCharge
	err := row.Scan(&i.ID, &i.Name, &i.AmountCents, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const updateRecurringCharge = `
UPDATE recurring_charges
SET name = ?, amount_cents = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
WHERE id = ?
RETURNING id, name, amount_cents, created_at, updated_at
`

type UpdateRecurringChargeParams struct {
	Name        string
	AmountCents int64
	ID          int64
}

func (q *Queries) UpdateRecurringCharge(ctx context.Context, arg UpdateRecurringChargeParams) (RecurringCharge, error) {
	row := q.db.QueryRowContext(ctx, updateRecurringCharge, arg.Name, arg.AmountCents, arg.ID)
	var i RecurringCharge
	err := row.Scan(&i.ID, &i.Name, &i.AmountCents, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const deleteRecurringCharge = `
DELETE FROM recurring_charges
WHERE id = ?
RETURNING id, name, amount_cents, created_at, updated_at
`

func (q *Queries) DeleteRecurringCharge(ctx context.Context, id int64) (RecurringCharge, error) {
	row := q.db.QueryRowContext(ctx, deleteRecurringCharge, id)
	var i RecurringCharge
	err := row.Scan(&i.ID, &i.Name, &i.AmountCents, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const listRecurringCharges = `
SELECT id, name, amount_cents, created_at, updated_at
FROM recurring_charges
ORDER BY name, id
`

func (q *Queries) ListRecurringCharges(ctx context.Context) ([]RecurringCharge, error) {
	rows, err := q.db.QueryContext(ctx, listRecurringCharges)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RecurringCharge
	for rows.Next() {
		var i RecurringCharge
		if err := rows.Scan(&i.ID, &i.Name, &i.AmountCents, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumRecurringCharges = `
SELECT COALESCE(SUM(amount_cents), 0) FROM recurring_charges
`

func (q *Queries) SumRecurringCharges(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, sumRecurringCharges)
	var total int64
	err := row.Scan(&total)
	return total, err
}

const listCategories = `
SELECT id, name FROM expense_categories ORDER BY name
`

func (q *Queries) ListCategories(ctx context.Context) ([]ExpenseCategory, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExpenseCategory
	for rows.Next() {
		var i ExpenseCategory
		if err := rows.Scan(&i.ID, &i.Name); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getCategory = `
SELECT id, name FROM expense_categories WHERE id = ?
`

func (q *Queries) GetCategory(ctx context.Context, id int64) (ExpenseCategory, error) {
	row := q.db.QueryRowContext(ctx, getCategory, id)
	var i ExpenseCategory
	err := row.Scan(&i.ID, &i.Name)
	return i, err
}

const createExpense = `
INSERT INTO expenses (description, amount_cents, date, category_id, is_exceptional)
VALUES (?, ?, ?, ?, ?)
RETURNING id, description, amount_cents, date, category_id, is_exceptional, created_at, updated_at
`

type CreateExpenseParams struct {
	Description   string
	AmountCents   int64
	Date          string
	CategoryID    sql.NullInt64
	IsExceptional bool
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	row := q.db.QueryRowContext(ctx, createExpense,
		arg.Description,
		arg.AmountCents,
		arg.Date,
		arg.CategoryID,
		arg.IsExceptional,
	)
	var i Expense
	err := row.Scan(
		&i.ID,
		&i.Description,
		&i.AmountCents,
		&i.Date,
		&i.CategoryID,
		&i.IsExceptional,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateExpense = `
UPDATE expenses
SET description = ?, amount_cents = ?, date = ?, category_id = ?, is_exceptional = ?,
    updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
WHERE id = ?
RETURNING id, description, amount_cents, date, category_id, is_exceptional, created_at, updated_at
`

type UpdateExpenseParams struct {
	Description   string
	AmountCents   int64
	Date          string
	CategoryID    sql.NullInt64
	IsExceptional bool
	ID            int64
}

func (q *Queries) UpdateExpense(ctx context.Context, arg UpdateExpenseParams) (Expense, error) {
	row := q.db.QueryRowContext(ctx, updateExpense,
		arg.Description,
		arg.AmountCents,
		arg.Date,
		arg.CategoryID,
		arg.IsExceptional,
		arg.ID,
	)
	var i Expense
	err := row.Scan(
		&i.ID,
		&i.Description,
		&i.AmountCents,
		&i.Date,
		&i.CategoryID,
		&i.IsExceptional,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteExpense = `
DELETE FROM expenses WHERE id = ?
`

func (q *Queries) DeleteExpense(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getExpense = `
SELECT e.id, e.description, e.amount_cents, e.date, e.category_id, e.is_exceptional, c.name
FROM expenses e
LEFT JOIN expense_categories c ON c.id = e.category_id
WHERE e.id = ?
`

func (q *Queries) GetExpense(ctx context.Context, id int64) (ExpenseWithCategory, error) {
	row := q.db.QueryRowContext(ctx, getExpense, id)
	var i ExpenseWithCategory
	err := row.Scan(
		&i.ID,
		&i.Description,
		&i.AmountCents,
		&i.Date,
		&i.CategoryID,
		&i.IsExceptional,
		&i.CategoryName,
	)
	return i, err
}

const listExpensesBetween = `
SELECT e.id, e.description, e.amount_cents, e.date, e.category_id, e.is_exceptional, c.name
FROM expenses e
LEFT JOIN expense_categories c ON c.id = e.category_id
WHERE e.date BETWEEN ? AND ?
  AND (? OR e.is_exceptional = 0)
  AND (? IS NULL OR e.category_id = ?)
ORDER BY e.date DESC, e.id DESC
`

type ListExpensesBetweenParams struct {
	From               string
	To                 string
	IncludeExceptional bool
	CategoryID         sql.NullInt64
}

func (q *Queries) ListExpensesBetween(ctx context.Context, arg ListExpensesBetweenParams) ([]ExpenseWithCategory, error) {
	rows, err := q.db.QueryContext(ctx, listExpensesBetween,
		arg.From,
		arg.To,
		arg.IncludeExceptional,
		arg.CategoryID,
		arg.CategoryID,
	)
	if err != nil {
		return nil, err
	}
	return scanExpensesWithCategory(rows)
}

const listExceptionalExpensesBetween = `
SELECT e.id, e.description, e.amount_cents, e.date, e.category_id, e.is_exceptional, c.name
FROM expenses e
LEFT JOIN expense_categories c ON c.id = e.category_id
WHERE e.date BETWEEN ? AND ?
  AND e.is_exceptional = 1
ORDER BY e.date DESC, e.id DESC
`

func (q *Queries) ListExceptionalExpensesBetween(ctx context.Context, arg DateRangeParams) ([]ExpenseWithCategory, error) {
	rows, err := q.db.QueryContext(ctx, listExceptionalExpensesBetween, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	return scanExpensesWithCategory(rows)
}

func scanExpensesWithCategory(rows *sql.Rows) ([]ExpenseWithCategory, error) {
	defer rows.Close()
	var items []ExpenseWithCategory
	for rows.Next() {
		var i ExpenseWithCategory
		if err := rows.Scan(
			&i.ID,
			&i.Description,
			&i.AmountCents,
			&i.Date,
			&i.CategoryID,
			&i.IsExceptional,
			&i.CategoryName,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumExpensesBetween = `
SELECT COALESCE(SUM(amount_cents), 0)
FROM expenses
WHERE date BETWEEN ? AND ?
  AND is_exceptional = ?
`

type SumExpensesBetweenParams struct {
	From          string
	To            string
	IsExceptional bool
}

func (q *Queries) SumExpensesBetween(ctx context.Context, arg SumExpensesBetweenParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, sumExpensesBetween, arg.From, arg.To, arg.IsExceptional)
	var total int64
	err := row.Scan(&total)
	return total, err
}

const expenseExistsBetween = `
SELECT EXISTS (SELECT 1 FROM expenses WHERE date BETWEEN ? AND ?)
`

func (q *Queries) ExpenseExistsBetween(ctx context.Context, arg DateRangeParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, expenseExistsBetween, arg.From, arg.To)
	var exists int64
	err := row.Scan(&exists)
	return exists, err
}
