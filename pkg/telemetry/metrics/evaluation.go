package metrics

import (
	"time"

	"mercator-hq/rulescript/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// EvaluationMetrics tracks rule evaluation.
//
// Metrics:
//   - rulescript_engine_evaluations_total: Evaluations by contributing scope and outcome
//   - rulescript_engine_evaluation_duration_seconds: Evaluation duration
//   - rulescript_engine_reference_errors_total: Evaluations that referenced a missing fact
type EvaluationMetrics struct {
	// Total evaluations
	evaluationsTotal *prometheus.CounterVec

	// Evaluation duration histogram
	evaluationDuration prometheus.Histogram

	// Missing fact references
	referenceErrorsTotal prometheus.Counter
}

// NewEvaluationMetrics creates and registers evaluation metrics with the provided registry.
func NewEvaluationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EvaluationMetrics {
	em := &EvaluationMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluations_total",
				Help:      "Total number of rule evaluations",
			},
			[]string{"contributing_scope", "outcome"},
		),

		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of rule evaluation in seconds",
				// Evaluations walk a handful of lines
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
		),

		referenceErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "reference_errors_total",
				Help:      "Total number of evaluations that referenced a missing fact",
			},
		),
	}

	registry.MustRegister(
		em.evaluationsTotal,
		em.evaluationDuration,
		em.referenceErrorsTotal,
	)

	return em
}

// RecordEvaluation records one evaluation.
//
// Example:
//
//	em.RecordEvaluation("BRANCH", "matched", 3*time.Microsecond)
func (em *EvaluationMetrics) RecordEvaluation(contributingScope, outcome string, duration time.Duration) {
	em.evaluationsTotal.WithLabelValues(contributingScope, outcome).Inc()
	em.evaluationDuration.Observe(duration.Seconds())
}

// RecordReferenceError records an evaluation that referenced a missing fact.
func (em *EvaluationMetrics) RecordReferenceError() {
	em.referenceErrorsTotal.Inc()
}
