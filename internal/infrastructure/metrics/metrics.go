package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Support-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kust",
			Subsystem: "support_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kust",
			Subsystem: "support_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	// Model turn counter (one per upstream streaming call)
	StreamTurnsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kust",
			Subsystem: "support_api",
			Name:      "stream_turns_total",
			Help:      "Total upstream model turns started",
		},
	)

	// Stream failure counter by failure class
	StreamErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kust",
			Subsystem: "support_api",
			Name:      "stream_errors_total",
			Help:      "Total failed chat streams",
		},
		[]string{"reason"},
	)

	// Tool call counters
	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kust",
			Subsystem: "support_api",
			Name:      "tool_calls_total",
			Help:      "Total local tool invocations",
		},
		[]string{"tool_name"},
	)

	// Tool duration histogram
	ToolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kust",
			Subsystem: "support_api",
			Name:      "tool_duration_seconds",
			Help:      "Tool execution duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
		},
		[]string{"tool_name"},
	)

	// Live session gauge, refreshed by the janitor
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "kust",
			Subsystem: "support_api",
			Name:      "active_sessions",
			Help:      "Sessions currently held in memory",
		},
	)
)

// RecordRequest records an HTTP request outcome.
func RecordRequest(method, endpoint, status string, seconds float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(seconds)
}
