package config

import "time"

// Default values for configuration fields.
const (
	// DefaultConfigPath is used when no --config flag is given. A missing
	// file at this path is not an error.
	DefaultConfigPath = "rulescript.yaml"

	// Compiler defaults
	DefaultMaxScriptBytes     = 1 << 20
	DefaultMaxExpressionDepth = 32

	// Store defaults
	DefaultStoreMode        = "dir"
	DefaultStoreDir         = "./rules"
	DefaultDebounceInterval = 100 * time.Millisecond

	// Server defaults
	DefaultServerListenAddress      = "127.0.0.1:9464"
	DefaultServerReadHeaderTimeout  = 5 * time.Second
	DefaultServerShutdownTimeout    = 10 * time.Second
	DefaultServerHealthCheckTimeout = 2 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultMetricsEnabled     = true
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "rulescript"
	DefaultMetricsSubsystem   = "engine"
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingServiceName = "rulescript"
	DefaultTracingTimeout     = 10 * time.Second
)

// DefaultCompileDurationBuckets covers compiles from 100µs to 500ms.
var DefaultCompileDurationBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5}

// NewDefault returns a configuration with every default applied.
// Metrics are enabled.
func NewDefault() *Config {
	cfg := &Config{}
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
//
// Boolean fields cannot be distinguished from an explicit false, so they
// keep whatever value was parsed.
func ApplyDefaults(cfg *Config) {
	// Compiler defaults
	if cfg.Compiler.MaxScriptBytes == 0 {
		cfg.Compiler.MaxScriptBytes = DefaultMaxScriptBytes
	}
	if cfg.Compiler.MaxExpressionDepth == 0 {
		cfg.Compiler.MaxExpressionDepth = DefaultMaxExpressionDepth
	}

	// Store defaults
	if cfg.Store.Mode == "" {
		cfg.Store.Mode = DefaultStoreMode
	}
	if cfg.Store.Mode == "dir" && cfg.Store.Dir == "" {
		cfg.Store.Dir = DefaultStoreDir
	}
	if cfg.Store.DebounceInterval == 0 {
		cfg.Store.DebounceInterval = DefaultDebounceInterval
	}

	// Server defaults
	server := &cfg.Server
	if server.ListenAddress == "" {
		server.ListenAddress = DefaultServerListenAddress
	}
	if server.ReadHeaderTimeout == 0 {
		server.ReadHeaderTimeout = DefaultServerReadHeaderTimeout
	}
	if server.ShutdownTimeout == 0 {
		server.ShutdownTimeout = DefaultServerShutdownTimeout
	}
	if server.HealthCheckTimeout == 0 {
		server.HealthCheckTimeout = DefaultServerHealthCheckTimeout
	}

	// Logging defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}

	// Metrics defaults
	metrics := &cfg.Telemetry.Metrics
	if metrics.Path == "" {
		metrics.Path = DefaultMetricsPath
	}
	if metrics.Namespace == "" {
		metrics.Namespace = DefaultMetricsNamespace
	}
	if metrics.Subsystem == "" {
		metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(metrics.CompileDurationBuckets) == 0 {
		metrics.CompileDurationBuckets = append([]float64(nil), DefaultCompileDurationBuckets...)
	}

	// Tracing defaults
	tracing := &cfg.Telemetry.Tracing
	if tracing.Sampler == "" {
		tracing.Sampler = DefaultTracingSampler
	}
	if tracing.Sampler == "ratio" && tracing.SampleRatio == 0 {
		tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if tracing.ServiceName == "" {
		tracing.ServiceName = DefaultTracingServiceName
	}
	if tracing.Timeout == 0 {
		tracing.Timeout = DefaultTracingTimeout
	}
}
