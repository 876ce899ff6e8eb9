package metrics

import (
	"mercator-hq/rulescript/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CacheMetrics tracks the compiled rule set cache. Every series carries a
// "cache" label; the engine reports under "ruleset".
//
// A hit is a compile request whose text hashed to the committed entry, a
// miss is one that went to the parser (possibly sharing an in-flight
// compile), and an eviction follows a deleted script.
type CacheMetrics struct {
	hitsTotal      *prometheus.CounterVec
	missesTotal    *prometheus.CounterVec
	evictionsTotal *prometheus.CounterVec

	// Committed rule sets, one per scope
	entries *prometheus.GaugeVec
}

// NewCacheMetrics creates and registers cache metrics with the provided registry.
func NewCacheMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CacheMetrics {
	counter := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      name,
			Help:      help,
		}, []string{"cache"})
	}

	cm := &CacheMetrics{
		hitsTotal:      counter("cache_hits_total", "Compile requests answered by an unchanged cached rule set"),
		missesTotal:    counter("cache_misses_total", "Compile requests whose script text was not cached"),
		evictionsTotal: counter("cache_evictions_total", "Cached rule sets dropped because their script was deleted"),
		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "cache_entries",
			Help:      "Scopes with a committed rule set",
		}, []string{"cache"}),
	}

	registry.MustRegister(cm.hitsTotal, cm.missesTotal, cm.evictionsTotal, cm.entries)
	return cm
}

// RecordHit counts a compile answered from the cache.
func (cm *CacheMetrics) RecordHit(cacheName string) {
	cm.hitsTotal.WithLabelValues(cacheName).Inc()
}

// RecordMiss counts a compile that reached the parser.
func (cm *CacheMetrics) RecordMiss(cacheName string) {
	cm.missesTotal.WithLabelValues(cacheName).Inc()
}

// UpdateSize sets the number of committed rule sets.
func (cm *CacheMetrics) UpdateSize(cacheName string, size int) {
	cm.entries.WithLabelValues(cacheName).Set(float64(size))
}

// RecordEviction counts a rule set removed after its script was deleted.
func (cm *CacheMetrics) RecordEviction(cacheName string) {
	cm.evictionsTotal.WithLabelValues(cacheName).Inc()
}
