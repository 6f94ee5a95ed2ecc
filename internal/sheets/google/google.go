package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"ecotrack/internal/core"
	ports "ecotrack/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Ensure interface conformance
var (
	_ ports.JournalWriter = (*Client)(nil)
	_ ports.JournalReader = (*Client)(nil)
)

// Options configures the journal spreadsheet.
type Options struct {
	SpreadsheetID string
	// JournalSheet is the base tab name; the event year is prefixed, e.g. "2025 Journal".
	JournalSheet    string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	journalBase   string
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	base := strings.TrimSpace(opts.JournalSheet)
	if base == "" {
		base = "Journal"
	}

	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID, journalBase: base}, nil
}

// newSheetsService initializes a Sheets service from inline JSON, a file, or
// GOOGLE_APPLICATION_CREDENTIALS, in that order.
func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	credentialsFile := strings.TrimSpace(opts.CredentialsFile)
	if opts.CredentialsJSON == "" && credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case opts.CredentialsJSON != "":
		credentialsJSON = []byte(opts.CredentialsJSON)
	case credentialsFile != "":
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// AppendEvent appends the event as one row of the journal tab for the year
// it occurred in.
func (c *Client) AppendEvent(ctx context.Context, ev core.LedgerEvent) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	sheet := yearPrefixedName(c.journalBase, ev.OccurredAt.Year())
	rng := fmt.Sprintf("%s!A:I", sheet)
	vr := &gsheet.ValueRange{Values: [][]any{journalRow(ev)}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", sheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	return ref, nil
}

// ListEvents reads back every journal row for year. Rows that do not
// parse (the header, manual notes) are skipped.
func (c *Client) ListEvents(ctx context.Context, year int) ([]core.LedgerEvent, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:I", yearPrefixedName(c.journalBase, year))
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	var out []core.LedgerEvent
	for _, row := range resp.Values {
		ev, ok := parseJournalRow(row)
		if !ok {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func journalRow(ev core.LedgerEvent) []any {
	date := ""
	if !ev.Date.IsZero() {
		date = ev.Date.String()
	}
	return []any{
		ev.OccurredAt.UTC().Format(time.RFC3339),
		string(ev.Op),
		string(ev.Kind),
		ev.ID,
		date,
		ev.Label,
		ev.Amount.Euros(),
		ev.Category,
		ev.Exceptional,
	}
}

func parseJournalRow(row []any) (core.LedgerEvent, bool) {
	if len(row) < 7 {
		return core.LedgerEvent{}, false
	}
	cell := func(i int) string {
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(fmt.Sprint(row[i]))
	}

	at, err := time.Parse(time.RFC3339, cell(0))
	if err != nil {
		return core.LedgerEvent{}, false
	}
	id, err := strconv.ParseInt(cell(3), 10, 64)
	if err != nil {
		return core.LedgerEvent{}, false
	}
	// Sheets may render the amount with a comma depending on locale.
	cents, err := core.ParseDecimalToCents(cell(6))
	if err != nil {
		return core.LedgerEvent{}, false
	}
	ev := core.LedgerEvent{
		Op:          core.EventOp(cell(1)),
		Kind:        core.EntryKind(cell(2)),
		ID:          id,
		Label:       cell(5),
		Amount:      core.Money{Cents: cents},
		Category:    cell(7),
		Exceptional: strings.EqualFold(cell(8), "true"),
		OccurredAt:  at,
	}
	if s := cell(4); s != "" {
		d, err := core.ParseDate(s)
		if err != nil {
			return core.LedgerEvent{}, false
		}
		ev.Date = d
	}
	return ev, true
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
