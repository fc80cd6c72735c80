// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result label values
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics groups the collectors for HTTP traffic, cart mutations and checkouts
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	CartMutationsTotal  *prometheus.CounterVec
	CheckoutsTotal      *prometheus.CounterVec
	SaleGrandTotal      prometheus.Histogram
	StockShortfallTotal prometheus.Counter
	JobRunsTotal        *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		),
		CartMutationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pos_cart_mutations_total",
				Help: "Cart mutations by operation and result",
			},
			[]string{"operation", "result"},
		),
		CheckoutsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pos_checkouts_total",
				Help: "Checkout attempts by result",
			},
			[]string{"result"},
		),
		SaleGrandTotal: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pos_sale_grand_total",
				Help:    "Grand total of recorded sales in currency units",
				Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
			},
		),
		StockShortfallTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pos_stock_shortfall_total",
				Help: "Operations rejected for insufficient stock",
			},
		),
		JobRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pos_job_runs_total",
				Help: "Maintenance job runs by job and result",
			},
			[]string{"job", "result"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.CartMutationsTotal,
		m.CheckoutsTotal,
		m.SaleGrandTotal,
		m.StockShortfallTotal,
		m.JobRunsTotal,
	)
	return m
}

// Result maps an error to a result label
func Result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
