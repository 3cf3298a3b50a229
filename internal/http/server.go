// Package http serves the finance core as a JSON API: catalog lookups,
// ledger writes, the service registry, budgets and the dashboard, plus the
// health, readiness and metrics endpoints.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finanzas/internal/live"
	"finanzas/internal/log"
	"finanzas/internal/metrics"
	"finanzas/internal/middleware/ratelimit"
	"finanzas/internal/middleware/security"
	"finanzas/internal/middleware/trace"
	"finanzas/internal/services"
)

// Deps are the collaborators behind the API. Metrics, Logger, Ping and
// Clock are optional.
type Deps struct {
	Ledger   *services.LedgerService
	Accounts *services.AccountService
	Registry *services.RegistryService
	Budgets  *services.BudgetService
	View     *live.View

	Metrics *metrics.Collector
	Logger  *log.Logger
	// Ping checks the backing store for /readyz.
	Ping  func(context.Context) error
	Clock func() time.Time

	// Upcoming is how many deadlines the dashboard and the upcoming
	// service listing show.
	Upcoming int
	// WritesPerMinute caps mutating requests per client address.
	WritesPerMinute int
}

type Server struct {
	http.Server
	deps     Deps
	log      *log.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer registers the routes and middleware, returning a server ready
// for ListenAndServe.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.FromSlog(slog.Default(), log.ComponentHTTP)
	} else {
		logger = logger.WithComponent(log.ComponentHTTP)
	}
	if deps.Upcoming <= 0 {
		deps.Upcoming = 5
	}

	s := &Server{
		deps:     deps,
		log:      logger,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.WritesPerMinute}),
		detector: security.NewDetector(deps.Metrics),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", deps.Metrics.Handler())

	mux.HandleFunc("GET /api/catalog", s.handleCatalogTree)
	mux.HandleFunc("GET /api/catalog/units", s.handleUnits)
	mux.HandleFunc("GET /api/catalog/categories", s.handleCategories)
	mux.HandleFunc("GET /api/catalog/concepts", s.handleConcepts)
	mux.HandleFunc("GET /api/catalog/details", s.handleDetails)
	mux.HandleFunc("POST /api/catalog/selection", s.handleSelection)

	mux.HandleFunc("GET /api/accounts", s.handleListAccounts)
	mux.HandleFunc("POST /api/accounts", s.handleCreateAccount)
	mux.HandleFunc("PATCH /api/accounts/{id}", s.handleUpdateAccount)
	mux.HandleFunc("POST /api/accounts/{id}/deactivate", s.handleDeactivateAccount)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handlePostTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PATCH /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/services", s.handleListServices)
	mux.HandleFunc("POST /api/services", s.handleCreateService)
	mux.HandleFunc("PATCH /api/services/{id}", s.handleUpdateService)
	mux.HandleFunc("POST /api/services/{id}/advance", s.handleAdvanceService)
	mux.HandleFunc("PUT /api/services/{id}/amount", s.handleUpdateServiceAmount)
	mux.HandleFunc("POST /api/services/{id}/deactivate", s.handleDeactivateService)
	mux.HandleFunc("DELETE /api/services/{id}", s.handleDeleteService)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("POST /api/budgets", s.handleCreateBudget)
	mux.HandleFunc("PATCH /api/budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)

	// Outermost first: the tracer must see the status written by recovery
	// and by the limiter.
	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimit)(h)
	h = s.detector.Middleware(h)
	h = security.Headers(security.DefaultHeadersConfig())(h)
	h = s.recoverer(h)
	h = trace.NewMiddleware(logger, deps.Metrics, s.detector.ExtractClientIP).Handler(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops the limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) now() time.Time {
	if s.deps.Clock != nil {
		return s.deps.Clock()
	}
	return time.Now()
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.FromContext(r.Context()).ErrorContext(r.Context(), "Handler panic",
					"panic", rec, log.FieldPath, r.URL.Path)
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.deps.Metrics.SecurityEvent("rate_limited")
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded, try again later"})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports ready once every collection has delivered its first
// snapshot and the store answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	select {
	case <-s.deps.View.Ready():
	default:
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
		return
	}
	if s.deps.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Ping(ctx); err != nil {
			log.LogError(r.Context(), "Readiness check failed", err, "ping", nil)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "store unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "errors": s.deps.View.Errors()})
}
