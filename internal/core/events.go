package core

import "time"

type (
	EventOp   string
	EntryKind string
)

const (
	OpCreated EventOp = "created"
	OpUpdated EventOp = "updated"
	OpDeleted EventOp = "deleted"

	KindIncome          EntryKind = "income"
	KindRecurringCharge EntryKind = "recurring_charge"
	KindExpense         EntryKind = "expense"
)

// LedgerEvent is a snapshot of one ledger write. It carries the full row so
// consumers never need to read the store, even after a delete.
type LedgerEvent struct {
	Op          EventOp
	Kind        EntryKind
	ID          int64
	Date        Date // zero for recurring charges
	Label       string
	Amount      Money
	Category    string
	Exceptional bool
	OccurredAt  time.Time
}

func IncomeEvent(op EventOp, in Income, at time.Time) LedgerEvent {
	return LedgerEvent{Op: op, Kind: KindIncome, ID: in.ID, Date: in.Date, Label: in.Description, Amount: in.Amount, OccurredAt: at}
}

func ChargeEvent(op EventOp, c RecurringCharge, at time.Time) LedgerEvent {
	return LedgerEvent{Op: op, Kind: KindRecurringCharge, ID: c.ID, Label: c.Name, Amount: c.Amount, OccurredAt: at}
}

func ExpenseEvent(op EventOp, e Expense, at time.Time) LedgerEvent {
	return LedgerEvent{
		Op:          op,
		Kind:        KindExpense,
		ID:          e.ID,
		Date:        e.Date,
		Label:       e.Description,
		Amount:      e.Amount,
		Category:    e.Category,
		Exceptional: e.Exceptional,
		OccurredAt:  at,
	}
}
