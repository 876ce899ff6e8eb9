package metrics

import (
	"time"

	"mercator-hq/rulescript/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CompileMetrics tracks script compilation.
//
// Metrics:
//   - rulescript_engine_compiles_total: Compile requests by scope type and result
//   - rulescript_engine_compile_duration_seconds: Compile request duration
//   - rulescript_engine_diagnostics_total: Diagnostics reported by kind
type CompileMetrics struct {
	// Compile requests by result
	compilesTotal *prometheus.CounterVec

	// Compile duration histogram
	compileDuration *prometheus.HistogramVec

	// Diagnostics by kind (LexError, SyntaxError, StructuralError)
	diagnosticsTotal *prometheus.CounterVec
}

// NewCompileMetrics creates and registers compile metrics with the provided registry.
func NewCompileMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CompileMetrics {
	cm := &CompileMetrics{
		compilesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "compiles_total",
				Help:      "Total number of compile requests",
			},
			[]string{"scope_type", "result"},
		),

		compileDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "compile_duration_seconds",
				Help:      "Duration of compile requests in seconds",
				Buckets:   cfg.CompileDurationBuckets,
			},
			[]string{"scope_type"},
		),

		diagnosticsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "diagnostics_total",
				Help:      "Total number of compile diagnostics",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		cm.compilesTotal,
		cm.compileDuration,
		cm.diagnosticsTotal,
	)

	return cm
}

// RecordCompile records one compile request.
//
// Example:
//
//	cm.RecordCompile("ORG", "ok", 800*time.Microsecond)
func (cm *CompileMetrics) RecordCompile(scopeType, result string, duration time.Duration) {
	cm.compilesTotal.WithLabelValues(scopeType, result).Inc()
	cm.compileDuration.WithLabelValues(scopeType).Observe(duration.Seconds())
}

// RecordDiagnostic records one diagnostic of the given kind.
func (cm *CompileMetrics) RecordDiagnostic(kind string) {
	cm.diagnosticsTotal.WithLabelValues(kind).Inc()
}
