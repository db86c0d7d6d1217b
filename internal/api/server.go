package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/mwhitmore/budget-agent/internal/domain/balance"
	"github.com/mwhitmore/budget-agent/internal/domain/ledger"
	"github.com/mwhitmore/budget-agent/internal/domain/projection"
	"github.com/mwhitmore/budget-agent/internal/domain/schedule"
	"github.com/mwhitmore/budget-agent/internal/domain/statements"
	"github.com/mwhitmore/budget-agent/internal/domain/summary"
	"github.com/mwhitmore/budget-agent/pkg/config"
	"github.com/mwhitmore/budget-agent/pkg/metrics"
)

// Handlers bundles the domain services the HTTP layer exposes.
type Handlers struct {
	Ledger     *ledger.Service
	Statements *statements.Service
	Balance    *balance.Service
	Projection *projection.Service
	Schedule   *schedule.Service
	Summary    *summary.Service

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Server is the HTTP server for the budget agent API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds the router, wraps it in middleware and returns a server
// ready to start.
func NewServer(cfg config.ServerConfig, h *Handlers) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.Handle("GET /metrics", h.Metrics.Handler())

	mux.HandleFunc("POST /v1/statements", h.handleUploadStatement)

	mux.HandleFunc("GET /v1/transactions", h.handleListTransactions)
	mux.HandleFunc("DELETE /v1/transactions", h.handleClearTransactions)
	mux.HandleFunc("GET /v1/transactions/months", h.handleAvailableMonths)
	mux.HandleFunc("PATCH /v1/transactions/{id}/override", h.handleSetOverride)

	mux.HandleFunc("GET /v1/analysis/recurring", h.handleRecurring)
	mux.HandleFunc("GET /v1/analysis/consistent", h.handleConsistent)
	mux.HandleFunc("GET /v1/analysis/balance-series", h.handleBalanceSeries)
	mux.HandleFunc("GET /v1/analysis/projection", h.handleProjection)

	mux.HandleFunc("GET /v1/outgoings", h.handleListOutgoings)
	mux.HandleFunc("POST /v1/outgoings", h.handleCreateOutgoing)
	mux.HandleFunc("GET /v1/outgoings/{id}", h.handleGetOutgoing)
	mux.HandleFunc("PATCH /v1/outgoings/{id}", h.handleUpdateOutgoing)
	mux.HandleFunc("DELETE /v1/outgoings/{id}", h.handleDeleteOutgoing)
	mux.HandleFunc("POST /v1/outgoings/deduplicate", h.handleDeduplicateOutgoings)
	mux.HandleFunc("POST /v1/outgoings/import/{txID}", h.handleImportOutgoing)

	mux.HandleFunc("GET /v1/balances", h.handleListBalances)
	mux.HandleFunc("POST /v1/balances", h.handleRecordBalance)
	mux.HandleFunc("GET /v1/balances/latest", h.handleLatestSnapshots)
	mux.HandleFunc("GET /v1/overdrafts", h.handleListOverdrafts)
	mux.HandleFunc("POST /v1/overdrafts", h.handleRecordOverdraft)

	mux.HandleFunc("GET /v1/summaries/{kind}", h.handleGenerateSummary)

	var handler http.Handler = mux
	handler = Instrument(h.Metrics)(handler)
	handler = RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst)(handler)
	handler = cors.AllowAll().Handler(handler)
	handler = Logger(h.Logger)(handler)
	handler = Recovery(h.Logger)(handler)
	handler = RequestID(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: h.Logger,
	}
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
