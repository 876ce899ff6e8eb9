package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"mercator-hq/rulescript/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"json", Config{Level: "info", Format: "json"}, false},
		{"text", Config{Level: "debug", Format: "text"}, false},
		{"console", Config{Level: "WARN", Format: "console"}, false},
		{"defaults", Config{}, false},
		{"invalid level", Config{Level: "loud"}, true},
		{"invalid format", Config{Format: "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger.Slog() == nil {
				t.Error("Slog() = nil")
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Format: "text", Writer: &buf})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("output contains filtered info message: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("output missing warn message: %s", out)
	}
}

func TestLogger_ContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "debug", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	ctx := WithCompileID(context.Background(), "c-123")
	ctx = WithScope(ctx, "ORG", "acme")
	logger.Slog().InfoContext(ctx, "compiled", "rules", 7)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v: %s", err, buf.String())
	}

	want := map[string]any{
		"msg":        "compiled",
		"compile_id": "c-123",
		"scope_type": "ORG",
		"scope_id":   "acme",
		"rules":      float64(7),
	}
	for key, value := range want {
		if record[key] != value {
			t.Errorf("record[%q] = %v, want %v", key, record[key], value)
		}
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "text", Writer: &buf})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	logger.With("component", "cache").Info("ready")
	if !strings.Contains(buf.String(), "component=cache") {
		t.Errorf("output = %q, want component=cache", buf.String())
	}
}

func TestLogger_ConsoleOmitsTime(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	logger.Info("hello")
	if strings.Contains(buf.String(), "time=") {
		t.Errorf("console output contains a timestamp: %q", buf.String())
	}
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.LoggingConfig{Level: "debug", Format: "text", AddSource: true}, nil)
	if cfg.Level != "debug" || cfg.Format != "text" || !cfg.AddSource {
		t.Errorf("FromConfig() = %+v", cfg)
	}
}

func TestExtractContextFields(t *testing.T) {
	if fields := extractContextFields(context.Background()); len(fields) != 0 {
		t.Errorf("extractContextFields(empty) = %v, want none", fields)
	}

	ctx := WithTraceID(WithScope(context.Background(), "USER", "alice"), "t-1")
	fields := extractContextFields(ctx)
	want := []any{"scope_type", "USER", "scope_id", "alice", "trace_id", "t-1"}
	if len(fields) != len(want) {
		t.Fatalf("extractContextFields() = %v, want %v", fields, want)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("fields[%d] = %v, want %v", i, fields[i], want[i])
		}
	}
}
