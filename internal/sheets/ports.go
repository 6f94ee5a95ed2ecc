package sheets

import (
	"context"

	"ecotrack/internal/core"
)

// Ports for outbound adapters.
type (
	// JournalWriter appends one row per ledger event to an external journal.
	JournalWriter interface {
		AppendEvent(ctx context.Context, ev core.LedgerEvent) (rowRef string, err error)
	}

	// JournalReader reads back what was journaled for a given year.
	JournalReader interface {
		ListEvents(ctx context.Context, year int) ([]core.LedgerEvent, error)
	}
)

// JournalHeader names the journal columns in the order rows are written.
var JournalHeader = []string{"Timestamp", "Op", "Kind", "ID", "Date", "Label", "Amount", "Category", "Exceptional"}
