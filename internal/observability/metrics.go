package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// alert pipeline.
type Metrics struct {
	FetchesTotal  *prometheus.CounterVec // labels: outcome={success,error,rate_limited,stale_discard}
	FetchDuration prometheus.Histogram

	AlertsActive   prometheus.Gauge
	AlertsFiltered prometheus.Gauge
	AlertsCritical prometheus.Gauge

	NotificationsSent  prometheus.Counter
	NotificationErrors prometheus.Counter
	RateLimitDenials   prometheus.Counter
	ConditionsFetches  *prometheus.CounterVec // labels: outcome={success,error}
	PipelineRunning    prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.FetchesTotal,
		m.FetchDuration,
		m.AlertsActive,
		m.AlertsFiltered,
		m.AlertsCritical,
		m.NotificationsSent,
		m.NotificationErrors,
		m.RateLimitDenials,
		m.ConditionsFetches,
		m.PipelineRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_alerts",
			Name:      "fetches_total",
			Help:      "Alert fetch attempts by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storm_alerts",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a complete fetch-validate-map cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		AlertsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storm_alerts",
			Name:      "alerts_active",
			Help:      "Alerts in the last successful unfiltered fetch.",
		}),
		AlertsFiltered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storm_alerts",
			Name:      "alerts_filtered",
			Help:      "Alerts remaining after settings filtering.",
		}),
		AlertsCritical: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storm_alerts",
			Name:      "alerts_critical",
			Help:      "Filtered alerts with severe or extreme severity.",
		}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_alerts",
			Name:      "notifications_sent_total",
			Help:      "Toast notifications emitted for new critical alerts.",
		}),
		NotificationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_alerts",
			Name:      "notification_errors_total",
			Help:      "Best-effort notification deliveries that failed.",
		}),
		RateLimitDenials: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_alerts",
			Name:      "rate_limit_denials_total",
			Help:      "Outbound requests denied by the local rate limiter.",
		}),
		ConditionsFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_alerts",
			Name:      "conditions_fetches_total",
			Help:      "Current-conditions fetch attempts by outcome.",
		}, []string{"outcome"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storm_alerts",
			Name:      "pipeline_running",
			Help:      "1 when the poll loop is active, 0 when shut down.",
		}),
	}
}
