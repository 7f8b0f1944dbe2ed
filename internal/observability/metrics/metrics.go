package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes settlement-level instruments.
type Metrics struct {
	ReceiptsIssued      *prometheus.CounterVec
	DisbursementsIssued prometheus.Counter
	DebitsIssued        prometheus.Counter
	LedgerCorrections   prometheus.Counter
	DriftDetected       prometheus.Counter
	DriftAmount         prometheus.Gauge
}

// New registers the settlement instruments on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ReceiptsIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vaahan_receipts_issued_total",
			Help: "Receipts issued, by payment mode.",
		}, []string{"payment_mode"}),
		DisbursementsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vaahan_disbursements_issued_total",
			Help: "Finance disbursements recorded.",
		}),
		DebitsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vaahan_debits_issued_total",
			Help: "Manual debit adjustments recorded.",
		}),
		LedgerCorrections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vaahan_ledger_corrections_total",
			Help: "Ledger entry amount corrections applied.",
		}),
		DriftDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vaahan_balance_drift_detected_total",
			Help: "Bookings whose summed ledger diverged from the stored balance.",
		}),
		DriftAmount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vaahan_balance_drift_amount",
			Help: "Absolute drift amount found by the last reconciliation run.",
		}),
	}
	reg.MustRegister(
		m.ReceiptsIssued,
		m.DisbursementsIssued,
		m.DebitsIssued,
		m.LedgerCorrections,
		m.DriftDetected,
		m.DriftAmount,
	)
	return m
}

// HTTPMetrics instruments the gin request path.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers HTTP instruments on the given registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	h := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vaahan_http_requests_total",
			Help: "HTTP requests, by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vaahan_http_request_duration_seconds",
			Help:    "HTTP request latency, by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	reg.MustRegister(h.requests, h.duration)
	return h
}

// GinMiddleware records request counts and latencies.
func GinMiddleware(h *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		h.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		h.duration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
