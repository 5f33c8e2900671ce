// Package httpapi exposes the ledger subsystem over HTTP. Every route is
// scoped to a tenant path segment; handlers translate between JSON and the
// internal services and own nothing else.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/schoolbooks-dev/schoolbooks/internal/accounts"
	"github.com/schoolbooks-dev/schoolbooks/internal/audit"
	"github.com/schoolbooks-dev/schoolbooks/internal/backfill"
	"github.com/schoolbooks-dev/schoolbooks/internal/events"
	"github.com/schoolbooks-dev/schoolbooks/internal/ledger"
	"github.com/schoolbooks-dev/schoolbooks/internal/posting"
	"github.com/schoolbooks-dev/schoolbooks/internal/statement"
	"github.com/schoolbooks-dev/schoolbooks/internal/store"
)

// Server holds the wired services behind the HTTP API.
type Server struct {
	store    *store.Store
	accounts *accounts.Service
	events   *events.Service
	ledger   *ledger.Service
	audit    *audit.Service
	engine   *posting.Engine
	deriver  *statement.Deriver
	backfill *backfill.Coordinator
	log      zerolog.Logger
}

// NewServer creates a Server over an open store.
func NewServer(st *store.Store, log zerolog.Logger) *Server {
	accts := accounts.NewService(st)
	evs := events.NewService(st)
	led := ledger.NewService(st, accts)
	aud := audit.NewService(st)
	return &Server{
		store:    st,
		accounts: accts,
		events:   evs,
		ledger:   led,
		audit:    aud,
		engine:   posting.NewEngine(led, evs, aud, log),
		deriver:  statement.NewDeriver(led, accts),
		backfill: backfill.NewCoordinator(st, evs, led, aud, log),
		log:      log,
	}
}

// Backfill returns the coordinator so callers can tune BatchCap and
// DemoClass before serving.
func (s *Server) Backfill() *backfill.Coordinator {
	return s.backfill
}

// Router builds the chi router with all routes registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)

	r.Route("/tenants/{tenantID}", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", s.handleListAccounts)
			r.Post("/", s.handleCreateAccount)
			r.Get("/export", s.handleExportAccounts)
			r.Post("/import", s.handleImportAccounts)
			r.Get("/{accountID}", s.handleGetAccount)
		})

		r.Post("/fee-transactions", s.handleCreateFeeTransaction)
		r.Get("/fee-transactions", s.handleListFeeTransactions)
		r.Post("/income", s.handleCreateIncome)
		r.Get("/income", s.handleListIncome)
		r.Post("/expenses", s.handleCreateExpense)
		r.Get("/expenses", s.handleListExpenses)

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", s.handleListEntries)
			r.Post("/", s.handleCreateManualEntry)
			r.Get("/{entryID}", s.handleGetEntry)
		})
		r.Get("/orphans", s.handleListOrphans)

		r.Get("/ledger-config", s.handleGetLedgerConfig)
		r.Put("/ledger-config", s.handlePutLedgerConfig)

		r.Post("/backfill", s.handleBackfill)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/trial-balance", s.handleTrialBalance)
			r.Get("/income-statement", s.handleIncomeStatement)
			r.Get("/balance-sheet", s.handleBalanceSheet)
		})

		r.Get("/audit", s.handleListAudit)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func tenantID(r *http.Request) string {
	return chi.URLParam(r, "tenantID")
}

// requestLogger emits one structured line per request.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}
