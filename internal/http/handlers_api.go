package http

import (
	"net/http"

	"ecotrack/internal/core"
)

// JSON shapes. Amounts travel as integer cents plus a display string.

type amountJSON struct {
	Cents   int64  `json:"cents"`
	Display string `json:"display"`
}

func amount(m core.Money) amountJSON {
	return amountJSON{Cents: m.Cents, Display: m.String()}
}

type expenseJSON struct {
	ID          int64      `json:"id"`
	Date        core.Date  `json:"date"`
	Description string     `json:"description"`
	Amount      amountJSON `json:"amount"`
	CategoryID  *int64     `json:"category_id,omitempty"`
	Category    string     `json:"category,omitempty"`
	Exceptional bool       `json:"exceptional"`
}

type chargeJSON struct {
	ID     int64      `json:"id"`
	Name   string     `json:"name"`
	Amount amountJSON `json:"amount"`
}

type incomeJSON struct {
	ID          int64      `json:"id"`
	Date        core.Date  `json:"date"`
	Description string     `json:"description"`
	Amount      amountJSON `json:"amount"`
}

type periodJSON struct {
	Start           core.Date     `json:"start"`
	End             core.Date     `json:"end"`
	Label           string        `json:"label"`
	Current         bool          `json:"current"`
	Balance         amountJSON    `json:"balance"`
	PreviousBalance *amountJSON   `json:"previous_balance"`
	CanGoPrevious   bool          `json:"can_go_previous"`
	CanGoNext       bool          `json:"can_go_next"`
	Charges         []chargeJSON  `json:"charges"`
	ChargesTotal    amountJSON    `json:"charges_total"`
	Expenses        []expenseJSON `json:"expenses"`
	FilteredTotal   *amountJSON   `json:"filtered_total,omitempty"`
	Exceptional     []expenseJSON `json:"exceptional"`
	ExceptionalSum  amountJSON    `json:"exceptional_total"`
}

type overviewJSON struct {
	Year        int        `json:"year"`
	Income      amountJSON `json:"income"`
	Expenses    amountJSON `json:"expenses"`
	Exceptional amountJSON `json:"exceptional"`
	Balance     amountJSON `json:"balance"`
}

func toExpensesJSON(in []core.Expense) []expenseJSON {
	out := make([]expenseJSON, 0, len(in))
	for _, e := range in {
		out = append(out, expenseJSON{
			ID:          e.ID,
			Date:        e.Date,
			Description: e.Description,
			Amount:      amount(e.Amount),
			CategoryID:  e.CategoryID,
			Category:    e.Category,
			Exceptional: e.Exceptional,
		})
	}
	return out
}

func toChargesJSON(in []core.RecurringCharge) []chargeJSON {
	out := make([]chargeJSON, 0, len(in))
	for _, c := range in {
		out = append(out, chargeJSON{ID: c.ID, Name: c.Name, Amount: amount(c.Amount)})
	}
	return out
}

func toOverviewJSON(o core.AnnualOverview) overviewJSON {
	return overviewJSON{
		Year:        o.Year,
		Income:      amount(o.Income),
		Expenses:    amount(o.Expenses),
		Exceptional: amount(o.Exceptional),
		Balance:     amount(o.Balance),
	}
}

func (s *Server) handleAPIPeriod(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	start, err := s.ledger.ResolvePeriodStart(query.Get("start"))
	if err != nil {
		s.writeJSONError(w, r, err)
		return
	}
	filter, err := parseFilter(query)
	if err != nil {
		s.writeJSONError(w, r, err)
		return
	}
	page, err := s.loadPeriodPage(r.Context(), start, filter)
	if err != nil {
		s.writeJSONError(w, r, err)
		return
	}

	v := page.View
	out := periodJSON{
		Start:          v.Period.Start,
		End:            v.Period.End,
		Label:          v.Period.Label(),
		Current:        v.Current,
		Balance:        amount(v.Balance),
		CanGoPrevious:  v.CanGoPrevious,
		CanGoNext:      v.CanGoNext,
		Charges:        toChargesJSON(v.Charges),
		ChargesTotal:   amount(v.ChargesTotal),
		Expenses:       toExpensesJSON(v.Expenses),
		Exceptional:    toExpensesJSON(page.Exceptional.Expenses),
		ExceptionalSum: amount(page.Exceptional.Total),
	}
	if !v.FirstPeriod {
		prev := amount(v.PreviousBalance)
		out.PreviousBalance = &prev
	}
	if v.FilteredTotal != nil {
		ft := amount(*v.FilteredTotal)
		out.FilteredTotal = &ft
	}
	s.writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleAPIOverview(w http.ResponseWriter, r *http.Request) {
	years := s.ledger.OverviewYears()
	raw := r.URL.Query().Get("year")
	year, ok := parseYear(raw, years, 0)
	if !ok {
		s.writeJSON(w, r, http.StatusBadRequest, map[string]any{"error": "year out of range", "years": years})
		return
	}
	overviews, err := s.overviewsFor(r.Context())
	if err != nil {
		s.writeJSONError(w, r, err)
		return
	}

	out := make([]overviewJSON, 0, len(overviews))
	for _, o := range overviews {
		if raw == "" || o.Year == year {
			out = append(out, toOverviewJSON(o))
		}
	}
	s.writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleAPIIncomes(w http.ResponseWriter, r *http.Request) {
	summary, err := s.ledger.ListIncomes(r.Context())
	if err != nil {
		s.writeJSONError(w, r, err)
		return
	}
	incomes := make([]incomeJSON, 0, len(summary.Incomes))
	for _, in := range summary.Incomes {
		incomes = append(incomes, incomeJSON{ID: in.ID, Date: in.Date, Description: in.Description, Amount: amount(in.Amount)})
	}
	s.writeJSON(w, r, http.StatusOK, map[string]any{"incomes": incomes, "total": amount(summary.Total)})
}

func (s *Server) handleAPICharges(w http.ResponseWriter, r *http.Request) {
	charges, total, err := s.ledger.RecurringCharges(r.Context())
	if err != nil {
		s.writeJSONError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]any{"charges": toChargesJSON(charges), "total": amount(total)})
}

func (s *Server) handleAPICategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.ledger.Categories(r.Context())
	if err != nil {
		s.writeJSONError(w, r, err)
		return
	}
	type categoryJSON struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	out := make([]categoryJSON, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryJSON{ID: c.ID, Name: c.Name})
	}
	s.writeJSON(w, r, http.StatusOK, out)
}
