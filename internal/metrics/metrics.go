package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the store's Prometheus primitives.
type Metrics struct {
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	salesCreated   prometheus.Counter
	saleAmount     prometheus.Histogram
	stockRejected  *prometheus.CounterVec
	loginAttempts  *prometheus.CounterVec
	lowStockGauge  prometheus.Gauge
	ledgerAppended *prometheus.CounterVec
}

// New registers and returns the metrics set against reg; passing
// nil uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kahera_http_requests_total",
		Help: "Counts HTTP requests by method, route, and status.",
	}, []string{"method", "route", "status"})

	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kahera_http_duration_seconds",
		Help:    "HTTP request latency per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	salesCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kahera_sales_created_total",
		Help: "Completed checkouts.",
	})

	saleAmount := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "kahera_sale_amount_centavos",
		Help:    "Sale total distribution in centavos.",
		Buckets: []float64{1000, 5000, 10000, 50000, 100000, 500000},
	})

	stockRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kahera_stock_rejections_total",
		Help: "Requests rejected for insufficient stock, by operation.",
	}, []string{"operation"})

	loginAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kahera_login_attempts_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})

	lowStockGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kahera_products_low_stock",
		Help: "Products at or below their low-stock threshold.",
	})

	ledgerAppended := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kahera_ledger_entries_total",
		Help: "Ledger entries appended by log and action.",
	}, []string{"log", "action"})

	reg.MustRegister(
		httpRequests,
		httpDuration,
		salesCreated,
		saleAmount,
		stockRejected,
		loginAttempts,
		lowStockGauge,
		ledgerAppended,
	)

	return &Metrics{
		httpRequests:   httpRequests,
		httpDuration:   httpDuration,
		salesCreated:   salesCreated,
		saleAmount:     saleAmount,
		stockRejected:  stockRejected,
		loginAttempts:  loginAttempts,
		lowStockGauge:  lowStockGauge,
		ledgerAppended: ledgerAppended,
	}
}

// ObserveHTTP records one handled request.
func (m *Metrics) ObserveHTTP(method, route, status string, duration time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveSale records a completed checkout and its amount.
func (m *Metrics) ObserveSale(amountCentavos int64) {
	if m == nil {
		return
	}
	m.salesCreated.Inc()
	m.saleAmount.Observe(float64(amountCentavos))
}

// ObserveStockRejection counts an insufficient-stock refusal.
func (m *Metrics) ObserveStockRejection(operation string) {
	if m == nil {
		return
	}
	m.stockRejected.WithLabelValues(operation).Inc()
}

// ObserveLogin counts a login attempt outcome ("success" or "failure").
func (m *Metrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.loginAttempts.WithLabelValues(outcome).Inc()
}

// SetLowStockCount updates the low-stock gauge.
func (m *Metrics) SetLowStockCount(value float64) {
	if m == nil {
		return
	}
	m.lowStockGauge.Set(value)
}

// ObserveLedgerAppend counts an appended ledger entry.
func (m *Metrics) ObserveLedgerAppend(log, action string) {
	if m == nil {
		return
	}
	m.ledgerAppended.WithLabelValues(log, action).Inc()
}
