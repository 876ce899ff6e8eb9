package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mercator-hq/rulescript/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Helper function to create test config
func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:                true,
		Namespace:              "test",
		Subsystem:              "rules",
		CompileDurationBuckets: []float64{0.001, 0.01, 0.1},
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
	if !collector.Enabled() {
		t.Error("Enabled() = false, want true")
	}

	defaults := NewCollector(&config.MetricsConfig{Enabled: true}, nil)
	if defaults.config.Namespace != "rulescript" || defaults.config.Subsystem != "engine" {
		t.Errorf("defaults = %s/%s, want rulescript/engine", defaults.config.Namespace, defaults.config.Subsystem)
	}
}

func TestCollector_RecordCompile(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordCompile("ORG", "ok", time.Millisecond, nil)
	collector.RecordCompile("ORG", "error", time.Millisecond, []string{"SyntaxError", "SyntaxError", "StructuralError"})
	collector.RecordCompile("USER", "cached", time.Microsecond, nil)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"ORG ok", testutil.ToFloat64(collector.compileMetrics.compilesTotal.WithLabelValues("ORG", "ok")), 1},
		{"ORG error", testutil.ToFloat64(collector.compileMetrics.compilesTotal.WithLabelValues("ORG", "error")), 1},
		{"USER cached", testutil.ToFloat64(collector.compileMetrics.compilesTotal.WithLabelValues("USER", "cached")), 1},
		{"SyntaxError", testutil.ToFloat64(collector.compileMetrics.diagnosticsTotal.WithLabelValues("SyntaxError")), 2},
		{"StructuralError", testutil.ToFloat64(collector.compileMetrics.diagnosticsTotal.WithLabelValues("StructuralError")), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestCollector_RecordEvaluation(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordEvaluation("BRANCH", "matched", time.Microsecond)
	collector.RecordEvaluation("BRANCH", "matched", time.Microsecond)
	collector.RecordEvaluation("ORG", "error", time.Microsecond)
	collector.RecordReferenceError()

	if got := testutil.ToFloat64(collector.evaluationMetrics.evaluationsTotal.WithLabelValues("BRANCH", "matched")); got != 2 {
		t.Errorf("BRANCH matched = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.evaluationMetrics.referenceErrorsTotal); got != 1 {
		t.Errorf("reference errors = %v, want 1", got)
	}
}

func TestCollector_CacheMetrics(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordCacheHit("ruleset")
	collector.RecordCacheMiss("ruleset")
	collector.RecordCacheMiss("ruleset")
	collector.UpdateCacheSize("ruleset", 3)
	collector.RecordCacheEviction("ruleset")

	if got := testutil.ToFloat64(collector.cacheMetrics.hitsTotal.WithLabelValues("ruleset")); got != 1 {
		t.Errorf("hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.cacheMetrics.missesTotal.WithLabelValues("ruleset")); got != 2 {
		t.Errorf("misses = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.cacheMetrics.entries.WithLabelValues("ruleset")); got != 3 {
		t.Errorf("entries = %v, want 3", got)
	}
	if got := testutil.ToFloat64(collector.cacheMetrics.evictionsTotal.WithLabelValues("ruleset")); got != 1 {
		t.Errorf("evictions = %v, want 1", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, nil)

	collector.RecordCompile("ORG", "ok", time.Millisecond, []string{"SyntaxError"})
	collector.RecordCacheHit("ruleset")
	collector.RecordEvaluation("ORG", "matched", time.Microsecond)

	if got := testutil.ToFloat64(collector.compileMetrics.compilesTotal.WithLabelValues("ORG", "ok")); got != 0 {
		t.Errorf("compiles with metrics disabled = %v, want 0", got)
	}
	if got := testutil.ToFloat64(collector.cacheMetrics.hitsTotal.WithLabelValues("ruleset")); got != 0 {
		t.Errorf("hits with metrics disabled = %v, want 0", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.RecordCompile("ORG", "ok", time.Millisecond, nil)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "test_rules_compiles_total") {
		t.Errorf("body missing test_rules_compiles_total:\n%s", rec.Body.String())
	}
}
