// Package metrics implements the Metrics port with Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pos"

var latencyBucketsMS = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}

// PrometheusMetrics holds the service collectors on a private registry
type PrometheusMetrics struct {
	registry        *prometheus.Registry
	httpRequests    *prometheus.CounterVec
	httpLatencyMS   *prometheus.HistogramVec
	checkouts       *prometheus.CounterVec
	reconciliations *prometheus.CounterVec
	gatewayRequests *prometheus.CounterVec
	gatewayLatency  *prometheus.HistogramVec
	dbPoolInUse     prometheus.Gauge
	dbPoolOpen      prometheus.Gauge
}

var _ coreport.Metrics = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics creates and registers every collector
func NewPrometheusMetrics() *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		httpLatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   latencyBucketsMS,
		}, []string{"handler"}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Checkout attempts by payment method and outcome.",
		}, []string{"method", "outcome"}),
		reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciliations_total",
			Help:      "Gateway reconciliations by source and outcome.",
		}, []string{"source", "outcome"}),
		gatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_requests_total",
			Help:      "Payment provider requests by operation and HTTP status.",
		}, []string{"operation", "status"}),
		gatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_request_duration_ms",
			Help:      "Payment provider latency in milliseconds.",
			Buckets:   latencyBucketsMS,
		}, []string{"operation"}),
		dbPoolInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_pool_in_use",
			Help:      "Database connections currently in use.",
		}),
		dbPoolOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_pool_open",
			Help:      "Open database connections.",
		}),
	}

	m.registry.MustRegister(
		m.httpRequests,
		m.httpLatencyMS,
		m.checkouts,
		m.reconciliations,
		m.gatewayRequests,
		m.gatewayLatency,
		m.dbPoolInUse,
		m.dbPoolOpen,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest counts a request and observes its latency
func (m *PrometheusMetrics) RecordHTTPRequest(handler, status string, duration time.Duration) {
	m.httpRequests.WithLabelValues(handler, status).Inc()
	m.httpLatencyMS.WithLabelValues(handler).Observe(milliseconds(duration))
}

// RecordCheckout counts a checkout outcome
func (m *PrometheusMetrics) RecordCheckout(method, outcome string) {
	m.checkouts.WithLabelValues(method, outcome).Inc()
}

// RecordReconciliation counts a reconciliation outcome
func (m *PrometheusMetrics) RecordReconciliation(source, outcome string) {
	m.reconciliations.WithLabelValues(source, outcome).Inc()
}

// RecordGatewayRequest counts a provider call and observes its latency
func (m *PrometheusMetrics) RecordGatewayRequest(operation, status string, duration time.Duration) {
	m.gatewayRequests.WithLabelValues(operation, status).Inc()
	m.gatewayLatency.WithLabelValues(operation).Observe(milliseconds(duration))
}

// SetDBPoolStats updates the pool gauges
func (m *PrometheusMetrics) SetDBPoolStats(inUse, open int) {
	m.dbPoolInUse.Set(float64(inUse))
	m.dbPoolOpen.Set(float64(open))
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// NoopMetrics discards everything
type NoopMetrics struct{}

var _ coreport.Metrics = NoopMetrics{}

func (NoopMetrics) RecordHTTPRequest(string, string, time.Duration)    {}
func (NoopMetrics) RecordCheckout(string, string)                      {}
func (NoopMetrics) RecordReconciliation(string, string)                {}
func (NoopMetrics) RecordGatewayRequest(string, string, time.Duration) {}
func (NoopMetrics) SetDBPoolStats(int, int)                            {}
