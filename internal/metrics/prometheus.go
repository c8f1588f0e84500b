package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LatencyBuckets covers upstream round trips from 50ms to 30s.
var LatencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

var (
	// RequestsTotal counts HTTP requests by route, method and status code.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokencounter_requests_total",
			Help: "Total requests",
		},
		[]string{"route", "method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tokencounter_request_duration_seconds",
			Help:    "Request duration",
			Buckets: LatencyBuckets,
		},
		[]string{"route", "method"},
	)

	// UpstreamCallsTotal counts vendor SDK calls by outcome.
	UpstreamCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokencounter_upstream_calls_total",
			Help: "Vendor API calls",
		},
		[]string{"vendor", "operation", "status"},
	)

	// UpstreamLatency records vendor SDK call latency in seconds.
	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tokencounter_upstream_latency_seconds",
			Help:    "Vendor API latency",
			Buckets: LatencyBuckets,
		},
		[]string{"vendor", "operation"},
	)

	// TokensCountedTotal sums the token counts returned by vendors.
	TokensCountedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokencounter_tokens_counted_total",
			Help: "Tokens counted",
		},
		[]string{"vendor", "model"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		UpstreamCallsTotal,
		UpstreamLatency,
		TokensCountedTotal,
	)
}

// PrometheusCollector records vendor calls into the package collectors.
type PrometheusCollector struct{}

// NewPrometheusCollector returns a collector backed by the default registry.
func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{}
}

// RecordUpstreamCall counts one vendor call and observes its latency.
func (PrometheusCollector) RecordUpstreamCall(vendor, operation string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	UpstreamCallsTotal.WithLabelValues(vendor, operation, status).Inc()
	UpstreamLatency.WithLabelValues(vendor, operation).Observe(duration.Seconds())
}

// RecordTokens adds a vendor-reported token count.
func (PrometheusCollector) RecordTokens(vendor, model string, tokens int64) {
	if tokens <= 0 {
		return
	}
	TokensCountedTotal.WithLabelValues(vendor, model).Add(float64(tokens))
}

// ObserveHTTPRequest records one served HTTP request.
func ObserveHTTPRequest(route, method string, status int, duration time.Duration) {
	RequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	RequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}
