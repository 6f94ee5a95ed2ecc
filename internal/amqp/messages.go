package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"ecotrack/internal/core"
)

// LedgerEventMessage is the wire form of a core.LedgerEvent.
type LedgerEventMessage struct {
	Op          string    `json:"op"`
	Kind        string    `json:"kind"`
	ID          int64     `json:"id"`
	Date        string    `json:"date,omitempty"`
	Label       string    `json:"label"`
	AmountCents int64     `json:"amount_cents"`
	Category    string    `json:"category,omitempty"`
	Exceptional bool      `json:"exceptional,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewLedgerEventMessage(ev core.LedgerEvent) *LedgerEventMessage {
	msg := &LedgerEventMessage{
		Op:          string(ev.Op),
		Kind:        string(ev.Kind),
		ID:          ev.ID,
		Label:       ev.Label,
		AmountCents: ev.Amount.Cents,
		Category:    ev.Category,
		Exceptional: ev.Exceptional,
		Timestamp:   ev.OccurredAt,
	}
	if !ev.Date.IsZero() {
		msg.Date = ev.Date.String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	return msg
}

// Event converts the message back into a domain event.
func (m *LedgerEventMessage) Event() (core.LedgerEvent, error) {
	ev := core.LedgerEvent{
		Op:          core.EventOp(m.Op),
		Kind:        core.EntryKind(m.Kind),
		ID:          m.ID,
		Label:       m.Label,
		Amount:      core.Money{Cents: m.AmountCents},
		Category:    m.Category,
		Exceptional: m.Exceptional,
		OccurredAt:  m.Timestamp,
	}
	switch ev.Kind {
	case core.KindIncome, core.KindRecurringCharge, core.KindExpense:
	default:
		return core.LedgerEvent{}, fmt.Errorf("unknown entry kind %q", m.Kind)
	}
	switch ev.Op {
	case core.OpCreated, core.OpUpdated, core.OpDeleted:
	default:
		return core.LedgerEvent{}, fmt.Errorf("unknown op %q", m.Op)
	}
	if m.Date != "" {
		d, err := core.ParseDate(m.Date)
		if err != nil {
			return core.LedgerEvent{}, fmt.Errorf("parse date %q: %w", m.Date, err)
		}
		ev.Date = d
	}
	return ev, nil
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
