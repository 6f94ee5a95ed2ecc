package core

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the ISO layout dates are stored and exchanged in.
const DateLayout = "2006-01-02"

type (
	// Date is a calendar date held as midnight UTC.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Income struct {
		ID          int64
		Date        Date
		Description string
		Amount      Money
	}

	RecurringCharge struct {
		ID     int64
		Name   string
		Amount Money
	}

	ExpenseCategory struct {
		ID   int64
		Name string
	}

	Expense struct {
		ID          int64
		Date        Date
		Description string
		Amount      Money
		CategoryID  *int64 // nil when uncategorised
		Category    string // resolved name, empty when uncategorised
		Exceptional bool
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrEmptyName          = errors.New("empty name")
	ErrFutureDate         = errors.New("date is in the future")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidPeriodStart = errors.New("period start must fall on the 25th")
	ErrNotFound           = errors.New("not found")
	ErrUnknownCategory    = errors.New("unknown category")
)

// IsValidation reports whether err is a user input error.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidAmount, ErrEmptyDescription, ErrEmptyName, ErrFutureDate,
		ErrInvalidDate, ErrInvalidPeriodStart, ErrUnknownCategory,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// NewDate creates a new Date from year, month, day. Out of range values
// are normalised the way time.Date does it.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses an ISO date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// Display renders the date as dd/mm/yyyy.
func (d Date) Display() string {
	return d.Format("02/01/2006")
}

// AddDays returns the date n days later (earlier when n is negative).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	parsed, err := ParseDate(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool  { return d.Time.Equal(o.Time) }

func (i Income) Validate(today Date) error {
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if i.Date.IsZero() {
		return ErrInvalidDate
	}
	if i.Date.After(today) {
		return ErrFutureDate
	}
	return nil
}

func (c RecurringCharge) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return c.Amount.Validate()
}

func (e Expense) Validate(today Date) error {
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if e.Date.After(today) {
		return ErrFutureDate
	}
	return nil
}
