// Package metrics exposes Prometheus collectors for the HTTP API and the
// statement import pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application collectors registered on a single registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	StatementRowsParsed  prometheus.Counter
	StatementRowsSkipped prometheus.Counter
	TransactionsStored   prometheus.Counter
	DuplicatesRemoved    prometheus.Counter
}

// New creates and registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "budget_agent_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "budget_agent_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		StatementRowsParsed: factory.NewCounter(prometheus.CounterOpts{
			Name: "budget_agent_statement_rows_parsed_total",
			Help: "Statement rows successfully parsed.",
		}),
		StatementRowsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "budget_agent_statement_rows_skipped_total",
			Help: "Statement rows skipped due to parse errors.",
		}),
		TransactionsStored: factory.NewCounter(prometheus.CounterOpts{
			Name: "budget_agent_transactions_stored_total",
			Help: "Raw transactions persisted.",
		}),
		DuplicatesRemoved: factory.NewCounter(prometheus.CounterOpts{
			Name: "budget_agent_scheduled_duplicates_removed_total",
			Help: "Scheduled outgoings removed by deduplication.",
		}),
	}
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
