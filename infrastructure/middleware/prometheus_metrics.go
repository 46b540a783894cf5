// Package middleware provides cross-cutting operational concerns for the
// scoring engine.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/code-scoring/engine/internal/ports"
)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It tracks provider call volume, latency, and grading outcomes.
type PrometheusMetrics struct {
	callLatency      *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	scoreHistogram   *prometheus.HistogramVec
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics creates a PrometheusMetrics instance and registers its
// metrics in the global Prometheus registry. Create at most one per process.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		callLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scoring_operation_duration_seconds",
				Help:    "Execution time of scoring engine operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "provider"},
		),
		operationCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scoring_operations_total",
				Help: "Total number of scoring engine operations by outcome.",
			},
			[]string{"operation", "provider", "status"},
		),
		scoreHistogram: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scoring_total_score",
				Help:    "Distribution of final grading scores on the 0-10 scale.",
				Buckets: prometheus.LinearBuckets(0, 1, 11),
			},
			[]string{"provider"},
		),
	}
}

// RecordLatency records the execution time of an operation, labeled with the
// provider when one is present.
func (pm *PrometheusMetrics) RecordLatency(
	operation string, duration time.Duration, labels map[string]string,
) {
	pm.callLatency.WithLabelValues(operation, labelOr(labels, "provider", "none")).
		Observe(duration.Seconds())
}

// RecordCounter increments the operation counter for the metric.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	pm.operationCounter.WithLabelValues(
		metric,
		labelOr(labels, "provider", "none"),
		labelOr(labels, "status", "ok"),
	).Add(value)
}

// RecordHistogram records a value in a histogram. Final scores route to the
// dedicated score distribution; everything else lands in the latency
// histogram keyed by metric name.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	if metric == "scoring_total_score" {
		pm.scoreHistogram.WithLabelValues(labelOr(labels, "provider", "none")).Observe(value)
		return
	}
	pm.callLatency.WithLabelValues(metric, labelOr(labels, "provider", "none")).Observe(value)
}

func labelOr(labels map[string]string, key, fallback string) string {
	if v, ok := labels[key]; ok && v != "" {
		return v
	}
	return fallback
}
