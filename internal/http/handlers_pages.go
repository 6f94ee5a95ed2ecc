package http

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"ecotrack/internal/core"
	applog "ecotrack/internal/log"
)

type periodPage struct {
	View        *core.PeriodView
	Exceptional *core.ExceptionalView
	Categories  []core.ExpenseCategory
	Incomes     core.IncomeSummary
	Today       core.Date

	PrevURL    string
	NextURL    string
	CurrentURL string
	// ToggleExceptionalURL flips the "include exceptional" filter.
	ToggleExceptionalURL string

	Error string
}

type overviewPage struct {
	Years     []int
	Year      int
	Selected  core.AnnualOverview
	Overviews []core.AnnualOverview
}

func (s *Server) loadPeriodPage(ctx context.Context, start core.Date, filter core.ExpenseFilter) (*periodPage, error) {
	page := &periodPage{Today: s.ledger.Today()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		page.View, err = s.ledger.PeriodView(gctx, start, filter)
		return err
	})
	g.Go(func() (err error) {
		page.Exceptional, err = s.ledger.ExceptionalView(gctx, start)
		return err
	})
	g.Go(func() (err error) {
		page.Categories, err = s.ledger.Categories(gctx)
		return err
	})
	g.Go(func() (err error) {
		page.Incomes, err = s.ledger.ListIncomes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	current := s.ledger.CurrentPeriod().Start
	page.CurrentURL = periodURL(current, current, filter)
	if page.View.CanGoPrevious {
		page.PrevURL = periodURL(core.PreviousPeriodStart(start), current, filter)
	}
	if page.View.CanGoNext {
		page.NextURL = periodURL(core.NextPeriodStart(start), current, filter)
	}
	toggled := filter
	toggled.IncludeExceptional = !filter.IncludeExceptional
	page.ToggleExceptionalURL = periodURL(start, current, toggled)
	return page, nil
}

// renderPeriod draws the period page, optionally with an error banner. It is
// shared by GET / and by writes that fail validation.
func (s *Server) renderPeriod(w http.ResponseWriter, r *http.Request, start core.Date, filter core.ExpenseFilter, status int, errMsg string) {
	logger := applog.FromContext(r.Context()).With(applog.NewFields().WithPeriod(start).ToSlice()...)
	r = r.WithContext(applog.NewContext(r.Context(), logger))

	page, err := s.loadPeriodPage(r.Context(), start, filter)
	if err != nil {
		s.failure(w, r, "Failed to load period", err)
		return
	}
	page.Error = errMsg
	s.render(w, r, status, "period.html", page)
}

func (s *Server) handlePeriodPage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	start, err := s.ledger.ResolvePeriodStart(query.Get("start"))
	if err != nil {
		s.failure(w, r, "Invalid period start", err)
		return
	}
	filter, err := parseFilter(query)
	if err != nil {
		s.failure(w, r, "Invalid expense filter", err)
		return
	}
	s.renderPeriod(w, r, start, filter, http.StatusOK, "")
}

func (s *Server) handleOverviewPage(w http.ResponseWriter, r *http.Request) {
	years := s.ledger.OverviewYears()
	year, ok := parseYear(r.URL.Query().Get("year"), years, s.ledger.Today().Year())
	if !ok {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Overview year out of range",
			applog.FieldYear, r.URL.Query().Get("year"))
		http.Error(w, "Année hors de la plage proposée.", http.StatusBadRequest)
		return
	}

	overviews, err := s.overviewsFor(r.Context())
	if err != nil {
		s.failure(w, r, "Failed to load annual overviews", err)
		return
	}
	page := overviewPage{Years: years, Year: year, Overviews: overviews}
	for _, o := range overviews {
		if o.Year == year {
			page.Selected = o
		}
	}
	s.render(w, r, http.StatusOK, "overview.html", page)
}
