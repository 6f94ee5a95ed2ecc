package core

// ExpenseFilter narrows the expense list of a period view.
type ExpenseFilter struct {
	CategoryID         *int64
	IncludeExceptional bool
}

// PeriodView is everything a screen needs to render one period.
type PeriodView struct {
	Period  Period
	Current bool // Period is the one containing today
	Balance Money

	// PreviousBalance is meaningless when FirstPeriod is set.
	PreviousBalance Money
	FirstPeriod     bool

	CanGoPrevious bool
	CanGoNext     bool

	Charges      []RecurringCharge
	ChargesTotal Money

	Filter   ExpenseFilter
	Expenses []Expense
	// FilteredTotal is set only when a category filter is active.
	FilteredTotal *Money
}

// ExceptionalView lists the exceptional expenses of a period.
type ExceptionalView struct {
	Period   Period
	Expenses []Expense
	Total    Money
}

// AnnualOverview summarises one calendar year.
type AnnualOverview struct {
	Year        int
	Income      Money
	Expenses    Money // non-exceptional, recurring charges included per the current-period rule
	Exceptional Money
	Balance     Money
}

// IncomeSummary is the full income list with its total.
type IncomeSummary struct {
	Incomes []Income
	Total   Money
}
