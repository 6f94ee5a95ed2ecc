package core

import "time"

// Periods run from the 25th of one month through the 24th of the next.
// Both days exist in every month so no clamping is needed.
const (
	PeriodStartDay = 25
	PeriodEndDay   = 24
)

// Period is a billing cycle. It is derived from dates and never stored.
type Period struct {
	Start Date
	End   Date
}

// CurrentPeriodStart returns the start of the period containing today.
func CurrentPeriodStart(today Date) Date {
	y, m, d := today.Date()
	if d >= PeriodStartDay {
		return NewDate(y, int(m), PeriodStartDay)
	}
	// time.Date normalises month 0 to December of the previous year.
	return NewDate(y, int(m)-1, PeriodStartDay)
}

// PeriodEnd returns the 24th of the month following start's month.
func PeriodEnd(start Date) Date {
	y, m, _ := start.Date()
	return NewDate(y, int(m)+1, PeriodEndDay)
}

// PreviousPeriodStart returns the 25th of the month before start's month.
func PreviousPeriodStart(start Date) Date {
	y, m, _ := start.Date()
	return NewDate(y, int(m)-1, PeriodStartDay)
}

// NextPeriodStart returns the day after the period ending.
func NextPeriodStart(start Date) Date {
	return PeriodEnd(start).AddDays(1)
}

func IsPeriodStart(d Date) bool {
	return d.Day() == PeriodStartDay
}

// PeriodStarting builds the period beginning at start.
func PeriodStarting(start Date) (Period, error) {
	if !IsPeriodStart(start) {
		return Period{}, ErrInvalidPeriodStart
	}
	return Period{Start: start, End: PeriodEnd(start)}, nil
}

// PeriodContaining returns the period d falls in.
func PeriodContaining(d Date) Period {
	start := CurrentPeriodStart(d)
	return Period{Start: start, End: PeriodEnd(start)}
}

func (p Period) Contains(d Date) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}

func (p Period) Previous() Period {
	start := PreviousPeriodStart(p.Start)
	return Period{Start: start, End: PeriodEnd(start)}
}

func (p Period) Next() Period {
	start := NextPeriodStart(p.Start)
	return Period{Start: start, End: PeriodEnd(start)}
}

// Label renders "25/09/2026 - 24/10/2026".
func (p Period) Label() string {
	return p.Start.Display() + " - " + p.End.Display()
}

// YearRange is the inclusive calendar-year window [Jan 1, Dec 31].
func YearRange(year int) (Date, Date) {
	return NewDate(year, int(time.January), 1), NewDate(year, int(time.December), 31)
}

// Clock returns the current instant. Services take one so that the
// "current period" can be pinned in tests.
type Clock func() time.Time

// SystemClock reads the wall clock.
func SystemClock() time.Time { return time.Now() }

// Today returns the local calendar date of the clock's instant.
func (c Clock) Today() Date {
	if c == nil {
		return DateOf(time.Now())
	}
	return DateOf(c())
}

// FixedClock always reports the given date.
func FixedClock(d Date) Clock {
	return func() time.Time { return d.Time }
}
