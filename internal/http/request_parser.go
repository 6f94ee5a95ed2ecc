package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"ecotrack/internal/core"
)

var errBadID = errors.New("invalid id")

// sanitizeInput trims and drops control characters other than tab and
// newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

// optionalDate parses an ISO date, returning the zero Date for "".
func optionalDate(raw string) (core.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(raw)
}

func optionalID(raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("category %q: %w", raw, core.ErrUnknownCategory)
	}
	return &id, nil
}

func isChecked(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "on", "true", "yes":
		return true
	default:
		return false
	}
}

func parseIncomeForm(form url.Values) (core.Income, error) {
	amount, err := core.ParseMoney(form.Get("amount"))
	if err != nil {
		return core.Income{}, err
	}
	date, err := core.ParseDate(form.Get("date"))
	if err != nil {
		return core.Income{}, err
	}
	return core.Income{
		Date:        date,
		Description: sanitizeInput(form.Get("description")),
		Amount:      amount,
	}, nil
}

func parseChargeForm(form url.Values) (core.RecurringCharge, error) {
	amount, err := core.ParseMoney(form.Get("amount"))
	if err != nil {
		return core.RecurringCharge{}, err
	}
	return core.RecurringCharge{
		Name:   sanitizeInput(form.Get("name")),
		Amount: amount,
	}, nil
}

// parseExpenseForm leaves Date zero when the field is blank; the service
// then picks today (add) or keeps the stored date (update).
func parseExpenseForm(form url.Values) (core.Expense, error) {
	amount, err := core.ParseMoney(form.Get("amount"))
	if err != nil {
		return core.Expense{}, err
	}
	date, err := optionalDate(form.Get("date"))
	if err != nil {
		return core.Expense{}, err
	}
	category, err := optionalID(form.Get("category"))
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		Date:        date,
		Description: sanitizeInput(form.Get("description")),
		Amount:      amount,
		CategoryID:  category,
		Exceptional: isChecked(form.Get("exceptional")),
	}, nil
}

// parseFilter reads the period page's expense filter from the query.
// Exceptional expenses are listed unless exceptional is explicitly unchecked.
func parseFilter(query url.Values) (core.ExpenseFilter, error) {
	return parseFilterFields(query, "category", "exceptional")
}

// parseFormFilter reads the filter a write form carries along, so a failed
// write re-renders the page as it was shown.
func parseFormFilter(form url.Values) (core.ExpenseFilter, error) {
	return parseFilterFields(form, "filter_category", "filter_exceptional")
}

func parseFilterFields(values url.Values, categoryKey, exceptionalKey string) (core.ExpenseFilter, error) {
	category, err := optionalID(values.Get(categoryKey))
	if err != nil {
		return core.ExpenseFilter{}, err
	}
	include := true
	if _, ok := values[exceptionalKey]; ok {
		include = isChecked(values.Get(exceptionalKey))
	}
	return core.ExpenseFilter{
		CategoryID:         category,
		IncludeExceptional: include,
	}, nil
}

// parseYear returns fallback for "" and rejects anything outside years.
func parseYear(raw string, years []int, fallback int) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, true
	}
	y, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	for _, allowed := range years {
		if y == allowed {
			return y, true
		}
	}
	return 0, false
}

// periodURL builds the period page link, keeping the active filter.
func periodURL(start core.Date, current core.Date, filter core.ExpenseFilter) string {
	q := url.Values{}
	if !start.Equal(current) {
		q.Set("start", start.String())
	}
	if filter.CategoryID != nil {
		q.Set("category", strconv.FormatInt(*filter.CategoryID, 10))
	}
	if !filter.IncludeExceptional {
		q.Set("exceptional", "0")
	}
	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}

// returnTo is where a write redirects: the period page the form came from,
// with the filter it was showing.
func returnTo(form url.Values) string {
	q := url.Values{}
	if start := strings.TrimSpace(form.Get("start")); start != "" {
		if _, err := core.ParseDate(start); err == nil {
			q.Set("start", start)
		}
	}
	if filter, err := parseFormFilter(form); err == nil {
		if filter.CategoryID != nil {
			q.Set("category", strconv.FormatInt(*filter.CategoryID, 10))
		}
		if !filter.IncludeExceptional {
			q.Set("exceptional", "0")
		}
	}
	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}
