// Package http serves the ledger as HTML pages and a small JSON API.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"ecotrack/internal/cache"
	"ecotrack/internal/core"
	applog "ecotrack/internal/log"
	"ecotrack/internal/middleware/ratelimit"
	"ecotrack/internal/middleware/security"
	"ecotrack/internal/middleware/trace"
	"ecotrack/internal/services"
	appweb "ecotrack/web"
)

type Options struct {
	RateLimitPerMinute int
	// CacheTTL bounds how long annual overviews are reused. Zero disables
	// the cache.
	CacheTTL time.Duration
	Logger   *applog.Logger
	// TrustedProxies are CIDRs, beyond the private ranges, whose
	// X-Forwarded-For is believed.
	TrustedProxies []string
}

type Server struct {
	http.Server
	ledger    *services.LedgerService
	templates *template.Template
	logger    *applog.Logger

	overviews *cache.LRU[[]core.AnnualOverview]
	janitor   *cache.Janitor
	limiter   *ratelimit.Limiter
	tracer    *trace.Middleware

	stopBackground context.CancelFunc
	shutdownOnce   sync.Once
}

// NewServer wires routes, middleware and templates. Background sweepers
// start immediately and stop on Shutdown.
func NewServer(addr string, ledger *services.LedgerService, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	resolver, err := security.NewClientIPResolver(opts.TrustedProxies...)
	if err != nil {
		return nil, err
	}

	s := &Server{
		ledger:    ledger,
		templates: tmpl,
		logger:    logger,
		overviews: cache.NewLRU[[]core.AnnualOverview](16, opts.CacheTTL),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		tracer:    trace.NewMiddleware(logger, resolver.ClientIP),
	}
	s.janitor = cache.NewJanitor(s.overviews)

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(resolver.ClientIP, ratelimit.WritesOnly)(handler)
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopBackground = cancel
	go s.janitor.Run(ctx, 10*time.Minute)
	go s.limiter.Run(ctx, 5*time.Minute)

	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssets(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handlePeriodPage)
	mux.HandleFunc("GET /overview", s.handleOverviewPage)

	mux.HandleFunc("POST /incomes", s.handleAddIncome)
	mux.HandleFunc("POST /charges", s.handleAddCharge)
	mux.HandleFunc("POST /charges/{id}", s.handleUpdateCharge)
	mux.HandleFunc("POST /charges/{id}/delete", s.handleDeleteCharge)
	mux.HandleFunc("POST /expenses", s.handleAddExpense)
	mux.HandleFunc("POST /expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("POST /expenses/{id}/delete", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/period", s.handleAPIPeriod)
	mux.HandleFunc("GET /api/overview", s.handleAPIOverview)
	mux.HandleFunc("GET /api/incomes", s.handleAPIIncomes)
	mux.HandleFunc("GET /api/charges", s.handleAPICharges)
	mux.HandleFunc("GET /api/categories", s.handleAPICategories)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
}

// Shutdown stops background sweepers and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.stopBackground()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// overviewsFor returns every selectable year's totals. Entries are keyed by
// today's date: the selectable years and the charge rule both move with the
// calendar year as well as with the current period.
func (s *Server) overviewsFor(ctx context.Context) ([]core.AnnualOverview, error) {
	key := s.ledger.Today().String()
	return s.overviews.GetOrLoad(key, func() ([]core.AnnualOverview, error) {
		return s.ledger.Overviews(ctx)
	})
}

// invalidate runs after every successful write.
func (s *Server) invalidate() {
	s.overviews.Purge()
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.ledger.Ping(ctx); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

var templateFuncs = template.FuncMap{
	"money":  func(m core.Money) string { return m.String() },
	"signed": func(m core.Money) string { return m.Signed() },
	"date":   func(d core.Date) string { return d.Display() },
	"iso":    func(d core.Date) string { return d.String() },
	"negative": func(m core.Money) bool {
		return m.Cents < 0
	},
	"selected": func(id *int64, want int64) bool {
		return id != nil && *id == want
	},
}
