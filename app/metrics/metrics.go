package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the alert pipeline.
type Metrics struct {
	FetchAttempts    *prometheus.CounterVec   // labels: zone, outcome={success,timeout,status,error}
	FetchDuration    *prometheus.HistogramVec // labels: zone
	RetriesExhausted *prometheus.CounterVec   // labels: zone
	PipelineRuns     *prometheus.CounterVec   // labels: zone, status
	ActiveAlerts     *prometheus.GaugeVec     // labels: zone
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_advices",
			Name:      "fetch_attempts_total",
			Help:      "Feed fetch attempts by zone and outcome.",
		}, []string{"zone", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weather_advices",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a single feed fetch attempt.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"zone"}),
		RetriesExhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_advices",
			Name:      "retries_exhausted_total",
			Help:      "Pipeline runs that spent every fetch attempt.",
		}, []string{"zone"}),
		PipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_advices",
			Name:      "pipeline_runs_total",
			Help:      "Completed pipeline runs by zone and reported status.",
		}, []string{"zone", "status"}),
		ActiveAlerts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "weather_advices",
			Name:      "active_alerts",
			Help:      "Alerts returned by the last successful run of a zone.",
		}, []string{"zone"}),
	}
}

// New creates the collectors and registers them with the default registry.
func New() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchAttempts,
		m.FetchDuration,
		m.RetriesExhausted,
		m.PipelineRuns,
		m.ActiveAlerts,
	)
	return m
}

// NewForTesting returns unregistered collectors so tests can build as many as they need.
func NewForTesting() *Metrics {
	return newMetrics()
}
