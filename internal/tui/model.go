// Package tui is a terminal browser over the ledger: one period at a time,
// with the category filter, the exceptional toggle and the annual overview.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"ecotrack/internal/core"
	applog "ecotrack/internal/log"
	"ecotrack/internal/services"
)

type screen int

const (
	screenPeriod screen = iota
	screenOverview
)

type (
	categoriesLoadedMsg struct {
		categories []core.ExpenseCategory
		err        error
	}
	periodLoadedMsg struct {
		view        *core.PeriodView
		exceptional *core.ExceptionalView
		err         error
	}
	overviewsLoadedMsg struct {
		overviews []core.AnnualOverview
		err       error
	}
)

type model struct {
	ctx    context.Context
	ledger *services.LedgerService
	nav    *services.Navigator
	logger *applog.Logger

	screen     screen
	categories []core.ExpenseCategory
	// catIdx indexes categories; -1 means no filter.
	catIdx      int
	exceptional bool

	view      *core.PeriodView
	excView   *core.ExceptionalView
	overviews []core.AnnualOverview
	yearIdx   int
	loading   bool
	status    string
	err       error
	width     int
	quitting  bool
}

func newModel(ctx context.Context, ledger *services.LedgerService, logger *applog.Logger) model {
	return model{
		ctx:         ctx,
		ledger:      ledger,
		nav:         services.NewNavigator(ledger),
		logger:      logger.WithComponent(applog.ComponentTUI),
		catIdx:      -1,
		exceptional: true,
		loading:     true,
	}
}

// Run blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, ledger *services.LedgerService, logger *applog.Logger) error {
	p := tea.NewProgram(newModel(ctx, ledger, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.loadCategoriesCmd(), m.loadPeriodCmd())
}

func (m model) filter() core.ExpenseFilter {
	f := core.ExpenseFilter{IncludeExceptional: m.exceptional}
	if m.catIdx >= 0 && m.catIdx < len(m.categories) {
		id := m.categories[m.catIdx].ID
		f.CategoryID = &id
	}
	return f
}

func (m model) loadCategoriesCmd() tea.Cmd {
	return func() tea.Msg {
		cats, err := m.ledger.Categories(m.ctx)
		return categoriesLoadedMsg{categories: cats, err: err}
	}
}

func (m model) loadPeriodCmd() tea.Cmd {
	nav, filter, ctx := m.nav, m.filter(), m.ctx
	return func() tea.Msg {
		var msg periodLoadedMsg
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			msg.view, err = nav.View(gctx, filter)
			return err
		})
		g.Go(func() (err error) {
			msg.exceptional, err = nav.Exceptional(gctx)
			return err
		})
		msg.err = g.Wait()
		return msg
	}
}

func (m model) loadOverviewsCmd() tea.Cmd {
	return func() tea.Msg {
		ov, err := m.ledger.Overviews(m.ctx)
		return overviewsLoadedMsg{overviews: ov, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case categoriesLoadedMsg:
		if msg.err != nil {
			return m.failed("Failed to load categories", msg.err), nil
		}
		m.categories = msg.categories
		return m, nil

	case periodLoadedMsg:
		m.loading = false
		if msg.err != nil {
			return m.failed("Failed to load period", msg.err), nil
		}
		m.err = nil
		m.view, m.excView = msg.view, msg.exceptional
		return m, nil

	case overviewsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			return m.failed("Failed to load annual overview", msg.err), nil
		}
		m.err = nil
		m.overviews = msg.overviews
		if m.yearIdx >= len(m.overviews) || m.yearIdx < 0 {
			m.yearIdx = len(m.overviews) - 1
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) failed(msg string, err error) model {
	applog.LogError(m.ctx, m.logger, msg, err, applog.OpLoad)
	m.err = err
	return m
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "o":
		if m.screen == screenOverview {
			m.screen = screenPeriod
			m.status = ""
			return m, nil
		}
		m.screen = screenOverview
		m.status = ""
		m.loading = true
		return m, m.loadOverviewsCmd()
	}

	if m.screen == screenOverview {
		return m.handleOverviewKey(key)
	}
	return m.handlePeriodKey(key)
}

func (m model) handleOverviewKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "h", "left":
		if m.yearIdx > 0 {
			m.yearIdx--
		}
	case "l", "right":
		if m.yearIdx < len(m.overviews)-1 {
			m.yearIdx++
		}
	case "esc":
		m.screen = screenPeriod
	}
	return m, nil
}

func (m model) handlePeriodKey(key string) (tea.Model, tea.Cmd) {
	m.status = ""
	switch key {
	case "h", "left":
		if m.view == nil || !m.view.CanGoPrevious {
			m.status = "Aucune donnée avant cette période."
			return m, nil
		}
		m.nav.Previous()
	case "l", "right":
		if _, moved := m.nav.Next(); !moved {
			m.status = "Déjà sur la période en cours."
			return m, nil
		}
	case "r":
		m.nav.Reset()
	case "x":
		m.exceptional = !m.exceptional
	case "c":
		m.catIdx++
		if m.catIdx >= len(m.categories) {
			m.catIdx = -1
		}
	default:
		return m, nil
	}
	m.loading = true
	return m, m.loadPeriodCmd()
}

// selectedOverview is the year highlighted on the overview screen.
func (m model) selectedOverview() (core.AnnualOverview, bool) {
	if m.yearIdx < 0 || m.yearIdx >= len(m.overviews) {
		return core.AnnualOverview{}, false
	}
	return m.overviews[m.yearIdx], true
}
