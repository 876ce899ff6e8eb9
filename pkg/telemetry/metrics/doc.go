// Package metrics provides Prometheus metrics collection for rulescript.
//
// # Metrics Categories
//
//   - Compile Metrics: compile requests by scope type and result, compile
//     duration, diagnostics by kind
//   - Cache Metrics: hits, misses, entries and evictions of the rule set cache
//   - Evaluation Metrics: evaluations by contributing scope and outcome,
//     evaluation duration, missing fact references
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	collector.RecordCompile("ORG", "ok", time.Millisecond, nil)
//	collector.RecordEvaluation("BRANCH", "matched", 4*time.Microsecond)
//
//	http.Handle("/metrics", collector.Handler())
//
// The collector satisfies cache.Metrics, so it can be handed directly to the
// rule set cache. Every metric is registered on the collector's own registry.
package metrics
