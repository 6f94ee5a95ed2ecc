package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"ecotrack/internal/core"
	applog "ecotrack/internal/log"
	"ecotrack/internal/services"
	"ecotrack/internal/storage"
)

// today falls in the period 25/12/2024 - 24/01/2025.
var today = core.NewDate(2025, 1, 10)

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	return newTestServerWithClock(t, opts, core.FixedClock(today))
}

func newTestServerWithClock(t *testing.T, opts Options, clock core.Clock) *Server {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	ledger := services.NewLedgerService(repo, nil, services.WithClock(clock))
	if opts.RateLimitPerMinute == 0 {
		opts.RateLimitPerMinute = 10000
	}
	if opts.Logger == nil {
		opts.Logger = applog.Discard()
	}
	srv, err := NewServer(":0", ledger, opts)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	t.Cleanup(func() {
		srv.Shutdown(context.Background())
		ledger.Close()
	})
	return srv
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func post(t *testing.T, srv *Server, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

type apiAmount struct {
	Cents int64 `json:"cents"`
}

type apiPeriod struct {
	Start           string     `json:"start"`
	Label           string     `json:"label"`
	Current         bool       `json:"current"`
	Balance         apiAmount  `json:"balance"`
	PreviousBalance *apiAmount `json:"previous_balance"`
	CanGoPrevious   bool       `json:"can_go_previous"`
	CanGoNext       bool       `json:"can_go_next"`
	Expenses        []struct {
		ID          int64  `json:"id"`
		Date        string `json:"date"`
		Category    string `json:"category"`
		Exceptional bool   `json:"exceptional"`
	} `json:"expenses"`
	FilteredTotal  *apiAmount `json:"filtered_total"`
	Exceptional    []struct{} `json:"exceptional"`
	ExceptionalSum apiAmount  `json:"exceptional_total"`
}

type apiOverview struct {
	Year        int       `json:"year"`
	Income      apiAmount `json:"income"`
	Expenses    apiAmount `json:"expenses"`
	Exceptional apiAmount `json:"exceptional"`
	Balance     apiAmount `json:"balance"`
}

func categoryID(t *testing.T, srv *Server, name string) string {
	t.Helper()
	cats := decode[[]struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}](t, get(t, srv, "/api/categories"))
	for _, c := range cats {
		if c.Name == name {
			return strconv.FormatInt(c.ID, 10)
		}
	}
	t.Fatalf("category %q not seeded", name)
	return ""
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, Options{})
	for _, path := range []string{"/healthz", "/readyz"} {
		if rr := get(t, srv, path); rr.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rr.Code)
		}
	}
}

func TestPeriodPage_Empty(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := get(t, srv, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{"25/12/2024 - 24/01/2025", "Première période", "+0.00 €", "Alimentation"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if rr.Header().Get("X-Request-ID") == "" || rr.Header().Get("Content-Security-Policy") == "" {
		t.Errorf("middleware headers missing: %v", rr.Header())
	}
	if got := get(t, srv, "/nope"); got.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d", got.Code)
	}
}

func TestWritesRedirectAndUpdateBalance(t *testing.T) {
	srv := newTestServer(t, Options{})

	steps := []struct {
		target string
		form   url.Values
	}{
		{"/incomes", url.Values{"amount": {"2000"}, "date": {"2025-01-05"}, "description": {"Salaire"}}},
		{"/charges", url.Values{"name": {"Loyer"}, "amount": {"800,00 €"}}},
		{"/expenses", url.Values{"description": {"Courses"}, "amount": {"300"}}},
		{"/expenses", url.Values{"description": {"Voiture"}, "amount": {"5000"}, "date": {"2025-01-02"}, "exceptional": {"on"}}},
	}
	for _, st := range steps {
		rr := post(t, srv, st.target, st.form)
		if rr.Code != http.StatusSeeOther {
			t.Fatalf("POST %s status = %d body=%s", st.target, rr.Code, rr.Body.String())
		}
		if loc := rr.Header().Get("Location"); loc != "/" {
			t.Errorf("POST %s Location = %q", st.target, loc)
		}
	}

	// 2000 - 300 - 800; the exceptional expense stays out of the balance.
	if body := get(t, srv, "/").Body.String(); !strings.Contains(body, "+900.00 €") {
		t.Errorf("period page does not show +900.00 €")
	}

	p := decode[apiPeriod](t, get(t, srv, "/api/period"))
	if p.Balance.Cents != 90000 || !p.Current || p.CanGoNext || p.CanGoPrevious {
		t.Errorf("period = %+v", p)
	}
	if p.PreviousBalance != nil {
		t.Errorf("first period must not report a previous balance")
	}
	if len(p.Expenses) != 2 {
		t.Errorf("expenses = %+v, exceptional ones are listed by default", p.Expenses)
	}
	if len(p.Exceptional) != 1 || p.ExceptionalSum.Cents != 500000 {
		t.Errorf("exceptional = %d items, total %d", len(p.Exceptional), p.ExceptionalSum.Cents)
	}

	p = decode[apiPeriod](t, get(t, srv, "/api/period?exceptional=0"))
	if len(p.Expenses) != 1 || p.Expenses[0].Date != "2025-01-10" {
		t.Errorf("without exceptional: %+v, want only the regular one dated today", p.Expenses)
	}

	// The filter form sends the hidden 0 after the checkbox value.
	p = decode[apiPeriod](t, get(t, srv, "/api/period?exceptional=1&exceptional=0"))
	if len(p.Expenses) != 2 {
		t.Errorf("checked box: %d expenses, want 2", len(p.Expenses))
	}
}

func TestWriteValidation(t *testing.T) {
	srv := newTestServer(t, Options{})

	tests := []struct {
		name   string
		target string
		form   url.Values
		status int
		msg    string
	}{
		{"bad amount", "/expenses", url.Values{"description": {"x"}, "amount": {"abc"}}, 422, "Le montant doit être"},
		{"zero amount", "/charges", url.Values{"name": {"x"}, "amount": {"0"}}, 422, "Le montant doit être"},
		{"missing description", "/expenses", url.Values{"description": {"  "}, "amount": {"1.23"}}, 422, "La description est obligatoire"},
		{"missing charge name", "/charges", url.Values{"amount": {"12"}}, 422, "Le nom est obligatoire"},
		{"future income", "/incomes", url.Values{"amount": {"10"}, "date": {"2025-01-11"}}, 422, "dans le futur"},
		{"missing income date", "/incomes", url.Values{"amount": {"10"}}, 422, "Date invalide"},
		{"unknown category", "/expenses", url.Values{"description": {"x"}, "amount": {"1"}, "category": {"999"}}, 422, "Catégorie inconnue"},
		{"update missing expense", "/expenses/999", url.Values{"description": {"x"}, "amount": {"1"}}, 404, "introuvable"},
		{"delete missing charge", "/charges/999/delete", nil, 404, "introuvable"},
		{"non-numeric id", "/expenses/abc/delete", nil, 400, "Identifiant invalide"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := post(t, srv, tt.target, tt.form)
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d body=%s", rr.Code, tt.status, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), tt.msg) {
				t.Errorf("body missing %q: %s", tt.msg, rr.Body.String())
			}
		})
	}

	// A 422 re-renders the page the form came from.
	rr := post(t, srv, "/expenses", url.Values{"description": {"x"}, "amount": {"-1"}, "start": {"2024-11-25"}})
	if rr.Code != 422 || !strings.Contains(rr.Body.String(), "25/11/2024 - 24/12/2024") {
		t.Errorf("validation page = %d, want the 25/11/2024 period", rr.Code)
	}
}

func TestWriteKeepsFilter(t *testing.T) {
	srv := newTestServer(t, Options{})
	transport := categoryID(t, srv, "Transport")

	rr := post(t, srv, "/expenses", url.Values{
		"description": {"x"}, "amount": {"abc"},
		"filter_category": {transport}, "filter_exceptional": {"0"},
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `value="`+transport+`" selected>`) {
		t.Errorf("re-rendered page lost the category filter")
	}
	if !strings.Contains(body, `name="filter_exceptional" value="0"`) || strings.Contains(body, `value="1" checked>`) {
		t.Errorf("re-rendered page lost the exceptional filter")
	}

	rr = post(t, srv, "/expenses", url.Values{
		"description": {"Bus"}, "amount": {"2"}, "category": {transport},
		"start": {"2024-12-25"}, "filter_category": {transport}, "filter_exceptional": {"0"},
	})
	want := "/?category=" + transport + "&exceptional=0&start=2024-12-25"
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != want {
		t.Errorf("redirect = %d %q, want %q", rr.Code, rr.Header().Get("Location"), want)
	}
}

func TestUpdateAndDeleteExpense(t *testing.T) {
	srv := newTestServer(t, Options{})

	post(t, srv, "/expenses", url.Values{"description": {"Train"}, "amount": {"12.50"}, "date": {"2025-01-03"}})
	p := decode[apiPeriod](t, get(t, srv, "/api/period"))
	if len(p.Expenses) != 1 {
		t.Fatalf("expenses = %+v", p.Expenses)
	}
	id := strconv.FormatInt(p.Expenses[0].ID, 10)

	// A blank date keeps the stored one.
	transport := categoryID(t, srv, "Transport")
	rr := post(t, srv, "/expenses/"+id, url.Values{
		"description": {"Train Paris"}, "amount": {"14"}, "category": {transport}, "start": {"2024-12-25"},
	})
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/?start=2024-12-25" {
		t.Fatalf("update = %d %q", rr.Code, rr.Header().Get("Location"))
	}
	p = decode[apiPeriod](t, get(t, srv, "/api/period?category="+transport))
	if len(p.Expenses) != 1 || p.Expenses[0].Date != "2025-01-03" || p.Expenses[0].Category != "Transport" {
		t.Fatalf("after update = %+v", p.Expenses)
	}
	if p.FilteredTotal == nil || p.FilteredTotal.Cents != 1400 {
		t.Errorf("filtered total = %+v", p.FilteredTotal)
	}

	if rr := post(t, srv, "/expenses/"+id+"/delete", nil); rr.Code != http.StatusSeeOther {
		t.Fatalf("delete = %d", rr.Code)
	}
	if p = decode[apiPeriod](t, get(t, srv, "/api/period")); len(p.Expenses) != 0 {
		t.Errorf("expense still listed after delete")
	}
}

func TestPeriodNavigation(t *testing.T) {
	srv := newTestServer(t, Options{})

	if rr := get(t, srv, "/?start=2024-12-20"); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("start off the 25th: status = %d", rr.Code)
	}
	if rr := get(t, srv, "/?category=abc"); rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad category filter: status = %d", rr.Code)
	}

	// Future starts clamp to the current period.
	p := decode[apiPeriod](t, get(t, srv, "/api/period?start=2025-06-25"))
	if p.Start != "2024-12-25" || !p.Current {
		t.Errorf("future start resolved to %+v", p)
	}

	post(t, srv, "/incomes", url.Values{"amount": {"100"}, "date": {"2024-11-30"}})
	p = decode[apiPeriod](t, get(t, srv, "/api/period"))
	if !p.CanGoPrevious || p.PreviousBalance == nil || p.PreviousBalance.Cents != 10000 {
		t.Errorf("current period after seeding previous = %+v", p)
	}

	p = decode[apiPeriod](t, get(t, srv, "/api/period?start=2024-11-25"))
	if p.Current || !p.CanGoNext || p.Label != "25/11/2024 - 24/12/2024" {
		t.Errorf("previous period = %+v", p)
	}

	body := get(t, srv, "/?start=2024-11-25").Body.String()
	if !strings.Contains(body, `href="/" rel="next"`) {
		t.Errorf("previous period page should link forward to the current period")
	}
}

func TestOverview(t *testing.T) {
	srv := newTestServer(t, Options{CacheTTL: time.Hour})

	post(t, srv, "/incomes", url.Values{"amount": {"2000"}, "date": {"2025-01-05"}})
	post(t, srv, "/charges", url.Values{"name": {"Loyer"}, "amount": {"800"}})
	post(t, srv, "/expenses", url.Values{"description": {"Courses"}, "amount": {"300"}})
	post(t, srv, "/expenses", url.Values{"description": {"TV"}, "amount": {"50"}, "exceptional": {"1"}})

	all := decode[[]apiOverview](t, get(t, srv, "/api/overview"))
	if len(all) != 5 || all[0].Year != 2021 || all[4].Year != 2025 {
		t.Fatalf("overview years = %+v", all)
	}

	// The current period began in 2024, so 2025's totals carry no charges yet.
	ov := decode[[]apiOverview](t, get(t, srv, "/api/overview?year=2025"))
	if len(ov) != 1 || ov[0].Income.Cents != 200000 || ov[0].Expenses.Cents != 30000 ||
		ov[0].Exceptional.Cents != 5000 || ov[0].Balance.Cents != 170000 {
		t.Errorf("2025 = %+v", ov)
	}

	// Writes purge the cache.
	post(t, srv, "/incomes", url.Values{"amount": {"100"}, "date": {"2025-01-06"}})
	ov = decode[[]apiOverview](t, get(t, srv, "/api/overview?year=2025"))
	if ov[0].Income.Cents != 210000 {
		t.Errorf("income after write = %d, want 210000", ov[0].Income.Cents)
	}

	if rr := get(t, srv, "/api/overview?year=2019"); rr.Code != http.StatusBadRequest {
		t.Errorf("year out of range status = %d", rr.Code)
	}

	rr := get(t, srv, "/overview?year=2025")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "+1800.00 €") {
		t.Errorf("overview page = %d", rr.Code)
	}
}

func TestOverviewCacheAcrossNewYear(t *testing.T) {
	now := core.NewDate(2026, 12, 31)
	clock := core.Clock(func() time.Time { return now.Time })
	srv := newTestServerWithClock(t, Options{CacheTTL: time.Hour}, clock)

	post(t, srv, "/charges", url.Values{"name": {"Loyer"}, "amount": {"800"}})

	// The current period began on 25/12/2026, so 2026 carries the charges.
	all := decode[[]apiOverview](t, get(t, srv, "/api/overview"))
	if len(all) != 5 || all[4].Year != 2026 || all[4].Expenses.Cents != 80000 {
		t.Fatalf("overview on 31/12/2026 = %+v", all)
	}

	now = core.NewDate(2027, 1, 1)

	ov := decode[[]apiOverview](t, get(t, srv, "/api/overview?year=2027"))
	if len(ov) != 1 || ov[0].Year != 2027 || ov[0].Expenses.Cents != 0 {
		t.Errorf("2027 on 01/01/2027 = %+v", ov)
	}
	ov = decode[[]apiOverview](t, get(t, srv, "/api/overview?year=2026"))
	if len(ov) != 1 || ov[0].Expenses.Cents != 0 {
		t.Errorf("2026 on 01/01/2027 = %+v, want no charges", ov)
	}
	if all = decode[[]apiOverview](t, get(t, srv, "/api/overview")); len(all) != 5 || all[0].Year != 2023 {
		t.Errorf("years on 01/01/2027 = %+v", all)
	}
}

func TestRateLimitOnWrites(t *testing.T) {
	srv := newTestServer(t, Options{RateLimitPerMinute: 1})

	form := url.Values{"name": {"Loyer"}, "amount": {"800"}}
	if rr := post(t, srv, "/charges", form); rr.Code != http.StatusSeeOther {
		t.Fatalf("first write = %d", rr.Code)
	}
	if rr := post(t, srv, "/charges", form); rr.Code != http.StatusTooManyRequests {
		t.Errorf("second write = %d, want 429", rr.Code)
	}
	if rr := get(t, srv, "/api/charges"); rr.Code != http.StatusOK {
		t.Errorf("reads must not be limited, got %d", rr.Code)
	}
}
