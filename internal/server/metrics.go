package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks analysis activity for the serve mode.
//
// Metrics:
//   - brandguard_analyses_total: analyses served, by role and outcome
//   - brandguard_analysis_duration_seconds: end-to-end analysis duration
//   - brandguard_analysis_score: distribution of compliance scores
type Metrics struct {
	registry *prometheus.Registry

	analysesTotal    *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	analysisScore    prometheus.Histogram
}

// NewMetrics creates and registers the serve-mode metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		analysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "brandguard",
				Name:      "analyses_total",
				Help:      "Total number of analyses served",
			},
			[]string{"role", "outcome"},
		),
		analysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "brandguard",
				Name:      "analysis_duration_seconds",
				Help:      "End-to-end analysis duration in seconds",
				// Heuristics finish in microseconds; model calls run to the
				// 3s budget.
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
		),
		analysisScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "brandguard",
				Name:      "analysis_score",
				Help:      "Distribution of compliance scores",
				Buckets:   prometheus.LinearBuckets(0, 10, 11),
			},
		),
	}

	m.registry.MustRegister(
		m.analysesTotal,
		m.analysisDuration,
		m.analysisScore,
		collectors.NewGoCollector(),
	)
	return m
}

// observe records one served analysis.
func (m *Metrics) observe(role, outcome string, score int, seconds float64) {
	m.analysesTotal.WithLabelValues(role, outcome).Inc()
	m.analysisDuration.Observe(seconds)
	m.analysisScore.Observe(float64(score))
}

// Handler returns the Prometheus exposition endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
