// Package backend assembles the ledger and the journal from configuration.
package backend

import (
	"ecotrack/internal/amqp"
	"ecotrack/internal/services"
	"ecotrack/internal/sheets"
)

// Journal is the full surface of a journal backend.
type Journal interface {
	sheets.JournalWriter
	sheets.JournalReader
}

type JournalType string

const (
	MemoryJournal JournalType = "memory"
	SheetsJournal JournalType = "sheets"
)

func (t JournalType) IsValid() bool {
	switch t {
	case MemoryJournal, SheetsJournal:
		return true
	default:
		return false
	}
}

type CleanupFunc func() error

// Ledger is a ready LedgerService plus whatever it holds open.
type Ledger struct {
	Service *services.LedgerService
	// Publisher is nil when AMQP is not configured or unreachable.
	Publisher *amqp.Client
	Cleanup   CleanupFunc
}
