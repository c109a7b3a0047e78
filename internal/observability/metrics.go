package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector holds all Prometheus metrics for Vigil.
// Uses a custom registry — no global state.
type MetricsCollector struct {
	Registry *prometheus.Registry

	// Intent parsing metrics.
	IntentParsesTotal *prometheus.CounterVec

	// Tool lifecycle metrics.
	ToolInvocationsTotal  *prometheus.CounterVec
	ToolExecutionDuration *prometheus.HistogramVec

	// Consent gate metrics.
	ConsentResolutionsTotal *prometheus.CounterVec
	ConsentQueueDepth       prometheus.Gauge

	// Conversation metrics.
	ChatMessagesTotal *prometheus.CounterVec

	// Ops HTTP listener metrics.
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ActiveRequests      prometheus.Gauge
}

// NewMetricsCollector creates a MetricsCollector with all metrics registered
// on a custom prometheus.Registry.
func NewMetricsCollector() *MetricsCollector {
	reg := prometheus.NewRegistry()

	m := &MetricsCollector{
		Registry: reg,

		IntentParsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vigil",
			Subsystem: "intent",
			Name:      "parses_total",
			Help:      "Total intent parse attempts by outcome.",
		}, []string{"outcome"}),

		ToolInvocationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vigil",
			Subsystem: "tool",
			Name:      "invocations_total",
			Help:      "Total tool invocations by resulting status.",
		}, []string{"tool", "status"}),

		ToolExecutionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vigil",
			Subsystem: "tool",
			Name:      "execution_duration_seconds",
			Help:      "Tool execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),

		ConsentResolutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vigil",
			Subsystem: "consent",
			Name:      "resolutions_total",
			Help:      "Total consent resolutions by operator decision.",
		}, []string{"decision"}),

		ConsentQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vigil",
			Subsystem: "consent",
			Name:      "queue_depth",
			Help:      "Number of tool calls currently awaiting consent.",
		}),

		ChatMessagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vigil",
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Total chat messages appended by role.",
		}, []string{"role"}),

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vigil",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		}, []string{"method", "path", "status_code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vigil",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),

		ActiveRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vigil",
			Name:      "active_requests",
			Help:      "Number of currently active requests.",
		}),
	}

	// Register all collectors.
	reg.MustRegister(
		m.IntentParsesTotal,
		m.ToolInvocationsTotal,
		m.ToolExecutionDuration,
		m.ConsentResolutionsTotal,
		m.ConsentQueueDepth,
		m.ChatMessagesTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ActiveRequests,
	)

	return m
}
