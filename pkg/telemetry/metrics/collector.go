package metrics

import (
	"time"

	"mercator-hq/rulescript/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the single entry point for rulescript Prometheus metrics.
// It owns a registry so tests and embedders never collide with the global one.
//
// A Collector with metrics disabled accepts every call and records nothing.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Compile metrics
	compileMetrics *CompileMetrics

	// Cache metrics
	cacheMetrics *CacheMetrics

	// Evaluation metrics
	evaluationMetrics *EvaluationMetrics
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a new registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "rulescript",
//		Subsystem: "engine",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = &config.MetricsConfig{Enabled: true}
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Set defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.CompileDurationBuckets) == 0 {
		cfg.CompileDurationBuckets = config.DefaultCompileDurationBuckets
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	c.compileMetrics = NewCompileMetrics(cfg, registry)
	c.cacheMetrics = NewCacheMetrics(cfg, registry)
	c.evaluationMetrics = NewEvaluationMetrics(cfg, registry)

	return c
}

// RecordCompile records a finished compile request.
//
// Parameters:
//   - scopeType: "ORG", "BRANCH" or "USER"
//   - result: "ok", "error", "cached" or "superseded"
//   - duration: Wall time of the request
//   - diagnosticKinds: Kind of every diagnostic returned
func (c *Collector) RecordCompile(scopeType, result string, duration time.Duration, diagnosticKinds []string) {
	if !c.config.Enabled {
		return
	}

	c.compileMetrics.RecordCompile(scopeType, result, duration)
	for _, kind := range diagnosticKinds {
		c.compileMetrics.RecordDiagnostic(kind)
	}
}

// RecordEvaluation records one rule evaluation.
//
// Parameters:
//   - contributingScope: Scope whose rule was evaluated
//   - outcome: "matched", "unmatched" or "error"
//   - duration: Evaluation duration
func (c *Collector) RecordEvaluation(contributingScope, outcome string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.evaluationMetrics.RecordEvaluation(contributingScope, outcome, duration)
}

// RecordReferenceError records an evaluation that referenced a missing fact.
func (c *Collector) RecordReferenceError() {
	if !c.config.Enabled {
		return
	}

	c.evaluationMetrics.RecordReferenceError()
}

// RecordCacheHit records a cache hit.
func (c *Collector) RecordCacheHit(cacheName string) {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.RecordHit(cacheName)
}

// RecordCacheMiss records a cache miss.
func (c *Collector) RecordCacheMiss(cacheName string) {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.RecordMiss(cacheName)
}

// RecordCacheEviction records an entry removed from a cache.
func (c *Collector) RecordCacheEviction(cacheName string) {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.RecordEviction(cacheName)
}

// UpdateCacheSize updates the current size of a cache.
func (c *Collector) UpdateCacheSize(cacheName string, size int) {
	if !c.config.Enabled {
		return
	}

	c.cacheMetrics.UpdateSize(cacheName, size)
}

// Enabled returns whether metrics are recorded.
func (c *Collector) Enabled() bool {
	return c.config.Enabled
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
