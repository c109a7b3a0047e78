package scheduler

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the report scheduler.
type Metrics struct {
	ReportsQueued prometheus.Counter
	ReportsFired  prometheus.Counter
	ReportsFailed prometheus.Counter
	FireDuration  prometheus.Histogram
}

// NewMetrics creates and registers scheduler metrics.
// Returns nil if reg is nil.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		return nil
	}

	m := &Metrics{
		ReportsQueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vigil",
			Subsystem: "scheduler",
			Name:      "reports_queued_total",
			Help:      "Total scheduled daily reports parked in the consent queue.",
		}),
		ReportsFired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vigil",
			Subsystem: "scheduler",
			Name:      "reports_fired_total",
			Help:      "Total scheduled daily reports executed without a consent gate.",
		}),
		ReportsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vigil",
			Subsystem: "scheduler",
			Name:      "reports_failed_total",
			Help:      "Total scheduled daily report invocations that failed.",
		}),
		FireDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vigil",
			Subsystem: "scheduler",
			Name:      "fire_duration_seconds",
			Help:      "Duration of each scheduler firing cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}

	reg.MustRegister(
		m.ReportsQueued,
		m.ReportsFired,
		m.ReportsFailed,
		m.FireDuration,
	)

	return m
}
