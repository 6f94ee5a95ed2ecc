package storage

import (
	"database/sql"
)

type Income struct {
	ID          int64
	AmountCents int64
	Description string
	Date        string
	CreatedAt   string
}

type RecurringCharge struct {
	ID          int64
	Name        string
	AmountCents int64
	CreatedAt   string
	UpdatedAt   string
}

type ExpenseCategory struct {
	ID   int64
	Name string
}

type Expense struct {
	ID            int64
	Description   string
	AmountCents   int64
	Date          string
	CategoryID    sql.NullInt64
	IsExceptional bool
	CreatedAt     string
	UpdatedAt     string
}

// ExpenseWithCategory is an expense row joined with its category name.
type ExpenseWithCategory struct {
	ID            int64
	Description   string
	AmountCents   int64
	Date          string
	CategoryID    sql.NullInt64
	IsExceptional bool
	CategoryName  sql.NullString
}
