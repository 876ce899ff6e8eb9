package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	// Validate
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML configuration and applies defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	// Fields whose default is true must be set before decoding so that an
	// absent key keeps the default.
	cfg := Config{}
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention RULESCRIPT_SECTION_FIELD (e.g., RULESCRIPT_STORE_DIR).
// Environment variables always take precedence over file-based configuration.
//
// When path is DefaultConfigPath and the file does not exist, defaults are
// used instead of returning an error.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		cfg, err = Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && path == DefaultConfigPath:
		cfg = NewDefault()
	default:
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Mode may have been overridden without a directory
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format RULESCRIPT_SECTION_FIELD. Values that
// fail to parse are ignored.
func applyEnvOverrides(cfg *Config) {
	// Compiler overrides
	envInt("RULESCRIPT_COMPILER_MAX_SCRIPT_BYTES", &cfg.Compiler.MaxScriptBytes)
	envInt("RULESCRIPT_COMPILER_MAX_EXPRESSION_DEPTH", &cfg.Compiler.MaxExpressionDepth)

	// Store overrides
	envString("RULESCRIPT_STORE_MODE", &cfg.Store.Mode)
	envString("RULESCRIPT_STORE_DIR", &cfg.Store.Dir)
	envBool("RULESCRIPT_STORE_WATCH", &cfg.Store.Watch)
	envDuration("RULESCRIPT_STORE_DEBOUNCE_INTERVAL", &cfg.Store.DebounceInterval)
	envString("RULESCRIPT_STORE_RESYNC_SCHEDULE", &cfg.Store.ResyncSchedule)

	// Server overrides
	envString("RULESCRIPT_SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envDuration("RULESCRIPT_SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	envBool("RULESCRIPT_SERVER_DISABLE_API", &cfg.Server.DisableAPI)

	// Logging overrides
	envString("RULESCRIPT_TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("RULESCRIPT_TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("RULESCRIPT_TELEMETRY_LOGGING_ADD_SOURCE", &cfg.Telemetry.Logging.AddSource)

	// Metrics overrides
	envBool("RULESCRIPT_TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("RULESCRIPT_TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	envString("RULESCRIPT_TELEMETRY_METRICS_NAMESPACE", &cfg.Telemetry.Metrics.Namespace)

	// Tracing overrides
	envBool("RULESCRIPT_TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("RULESCRIPT_TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	envString("RULESCRIPT_TELEMETRY_TRACING_SAMPLER", &cfg.Telemetry.Tracing.Sampler)
	envString("RULESCRIPT_TELEMETRY_TRACING_SERVICE_NAME", &cfg.Telemetry.Tracing.ServiceName)
	if val := os.Getenv("RULESCRIPT_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}

func envString(name string, dst *string) {
	if val := strings.TrimSpace(os.Getenv(name)); val != "" {
		*dst = val
	}
}

func envInt(name string, dst *int) {
	if val := os.Getenv(name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envBool(name string, dst *bool) {
	if val := os.Getenv(name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envDuration(name string, dst *time.Duration) {
	if val := os.Getenv(name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
