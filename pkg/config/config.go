package config

import "time"

// Config is the root configuration structure for rulescript.
// It contains the compiler limits, the script store, the watch-mode HTTP
// server, and telemetry settings.
type Config struct {
	// Compiler contains limits applied to every script compilation.
	Compiler CompilerConfig `yaml:"compiler"`

	// Store contains configuration for where scripts are read from and
	// whether they are watched for changes.
	Store StoreConfig `yaml:"store"`

	// Server contains configuration for the HTTP server started by the
	// watch command.
	Server ServerConfig `yaml:"server"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// CompilerConfig contains limits for the rule script compiler.
type CompilerConfig struct {
	// MaxScriptBytes is the largest script accepted for compilation.
	// Default: 1048576 (1 MiB)
	MaxScriptBytes int `yaml:"max_script_bytes"`

	// MaxExpressionDepth is the deepest expression nesting accepted.
	// Default: 32
	MaxExpressionDepth int `yaml:"max_expression_depth"`
}

// StoreConfig contains configuration for the script store.
type StoreConfig struct {
	// Mode selects the store implementation.
	// Options: "memory", "dir"
	// Default: "dir"
	Mode string `yaml:"mode"`

	// Dir is the root directory of a "dir" store. Scripts live at
	// <dir>/<org|branch|user>/<id>.rules.
	// Default: "./rules"
	Dir string `yaml:"dir"`

	// Watch enables recompiling scripts when files under Dir change.
	// Only valid with mode "dir".
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval coalesces bursts of file events for one script.
	// Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// ResyncSchedule is a cron spec for a full reload of every script.
	// Empty disables periodic resync.
	// Example: "*/5 * * * *"
	ResyncSchedule string `yaml:"resync_schedule"`
}

// ServerConfig contains configuration for the watch-mode HTTP server. It
// serves health probes, metrics and the read-only decision API.
type ServerConfig struct {
	// ListenAddress is the address the server binds to.
	// Default: "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address"`

	// ReadHeaderTimeout bounds reading request headers.
	// Default: 5s
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// HealthCheckTimeout bounds each readiness check.
	// Default: 2s
	HealthCheckTimeout time.Duration `yaml:"health_check_timeout"`

	// DisableAPI turns off the /v1 decision endpoints, leaving only
	// probes and metrics.
	// Default: false
	DisableAPI bool `yaml:"disable_api"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "rulescript"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "engine"
	Subsystem string `yaml:"subsystem"`

	// CompileDurationBuckets defines histogram buckets for compile duration (seconds).
	// Default: [0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5]
	CompileDurationBuckets []float64 `yaml:"compile_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 0.1 (10%)
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP/gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "rulescript"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS for the collector connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for span exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
