package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "skill_league"

// Metrics owns a dedicated registry so tests can build as many as they like.
type Metrics struct {
	registry     *prometheus.Registry
	runs         *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	skippedRuns  *prometheus.CounterVec
	scopeSeconds *prometheus.HistogramVec
	submissions  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "snapshot",
			Name:      "runs_total",
			Help:      "Snapshot aggregation runs by trigger and final status.",
		}, []string{"trigger", "status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "snapshot",
			Name:      "run_duration_seconds",
			Help:      "Wall time of snapshot aggregation runs.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"trigger"}),
		skippedRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "snapshot",
			Name:      "skipped_runs_total",
			Help:      "Snapshot runs skipped because another run was in progress.",
		}, []string{"trigger"}),
		scopeSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "snapshot",
			Name:      "scope_duration_seconds",
			Help:      "Aggregation time per leaderboard scope.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"scope", "status"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "league",
			Name:      "submissions_total",
			Help:      "Score submissions by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.runs,
		m.runDuration,
		m.skippedRuns,
		m.scopeSeconds,
		m.submissions,
	)
	return m
}

func (m *Metrics) ObserveRun(trigger, status string, duration time.Duration) {
	m.runs.WithLabelValues(trigger, status).Inc()
	m.runDuration.WithLabelValues(trigger).Observe(duration.Seconds())
}

func (m *Metrics) IncSkippedRun(trigger string) {
	m.skippedRuns.WithLabelValues(trigger).Inc()
}

func (m *Metrics) ObserveScope(scope, status string, duration time.Duration) {
	m.scopeSeconds.WithLabelValues(scope, status).Observe(duration.Seconds())
}

func (m *Metrics) IncSubmission(outcome string) {
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
