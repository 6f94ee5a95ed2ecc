package log

import "ecotrack/internal/core"

// Field names shared by every component.
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQuery       = "query"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldKind        = "kind"
	FieldEntryID     = "entry_id"
	FieldEntryDate   = "entry_date"
	FieldLabel       = "label"
	FieldAmountCents = "amount_cents"
	FieldCategory    = "category"
	FieldExceptional = "exceptional"
	FieldPeriodStart = "period_start"
	FieldYear        = "year"
	FieldJournalRef  = "journal_ref"
)

const (
	ComponentApp    = "app"
	ComponentHTTP   = "http"
	ComponentLedger = "ledger"
	ComponentWorker = "worker"
	ComponentTUI    = "tui"
)

const (
	OpRender   = "render"
	OpLoad     = "load"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// Fields is a small builder for slog key/value pairs.
type Fields map[string]any

func NewFields() Fields {
	return make(Fields)
}

func (f Fields) WithComponent(component string) Fields {
	f[FieldComponent] = component
	return f
}

func (f Fields) WithRequestID(requestID string) Fields {
	if requestID != "" {
		f[FieldRequestID] = requestID
	}
	return f
}

func (f Fields) WithError(err error) Fields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f Fields) WithOperation(op string) Fields {
	f[FieldOperation] = op
	return f
}

func (f Fields) WithPeriod(start core.Date) Fields {
	f[FieldPeriodStart] = start.String()
	return f
}

// WithEvent adds the identifying fields of a ledger change.
func (f Fields) WithEvent(ev core.LedgerEvent) Fields {
	f[FieldOperation] = string(ev.Op)
	f[FieldKind] = string(ev.Kind)
	f[FieldEntryID] = ev.ID
	f[FieldLabel] = ev.Label
	f[FieldAmountCents] = ev.Amount.Cents
	if !ev.Date.IsZero() {
		f[FieldEntryDate] = ev.Date.String()
	}
	if ev.Category != "" {
		f[FieldCategory] = ev.Category
	}
	if ev.Kind == core.KindExpense {
		f[FieldExceptional] = ev.Exceptional
	}
	return f
}

func (f Fields) WithHTTPRequest(method, path, query, userAgent string) Fields {
	f[FieldMethod] = method
	f[FieldPath] = path
	if query != "" {
		f[FieldQuery] = query
	}
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	return f
}

func (f Fields) WithHTTPResponse(statusCode int, durationMs int64) Fields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	return f
}

// ToSlice flattens the fields for slog's variadic args.
func (f Fields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
