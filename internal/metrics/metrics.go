// Package metrics holds the Prometheus collectors of the storefront API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	PaymentVerifications *prometheus.CounterVec
	GatewayCalls         *prometheus.CounterVec
	EmailsSent           *prometheus.CounterVec
	OrdersCreated        *prometheus.CounterVec
	OrderTotalMismatches prometheus.Counter
	CartConflicts        prometheus.Counter
	ImageDeleteFailures  prometheus.Counter
}

// New registers every collector on a fresh registry so several instances
// (one per test router) never collide.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		HTTPLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"route", "method"},
		),
		PaymentVerifications: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payment_verifications_total",
				Help:      "Payment signature verifications by result",
			},
			[]string{"result"},
		),
		GatewayCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gateway_calls_total",
				Help:      "Payment gateway calls by operation and result",
			},
			[]string{"operation", "result"},
		),
		EmailsSent: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "emails_sent_total",
				Help:      "Transactional emails by kind and result",
			},
			[]string{"kind", "result"},
		),
		OrdersCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "orders_created_total",
				Help:      "Orders created by payment method",
			},
			[]string{"payment_method"},
		),
		OrderTotalMismatches: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "order_total_mismatches_total",
				Help:      "Orders whose client supplied totals disagree with the server quote",
			},
		),
		CartConflicts: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cart_write_conflicts_total",
				Help:      "Cart writes rejected by the version check",
			},
		),
		ImageDeleteFailures: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "image_delete_failures_total",
				Help:      "Best-effort product image deletions that failed",
			},
		),
	}
}

func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(route, method).Observe(d.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) ObserveGateway(operation string, err error) {
	m.GatewayCalls.WithLabelValues(operation, result(err)).Inc()
}

func (m *Metrics) ObserveEmail(kind string, err error) {
	m.EmailsSent.WithLabelValues(kind, result(err)).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
