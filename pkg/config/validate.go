package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "store.dir").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateCompiler(&cfg.Compiler)...)
	errs = append(errs, validateStore(&cfg.Store)...)
	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateCompiler validates compiler limits.
func validateCompiler(cfg *CompilerConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxScriptBytes <= 0 {
		errs = append(errs, FieldError{
			Field:   "compiler.max_script_bytes",
			Message: fmt.Sprintf("must be positive, got %d", cfg.MaxScriptBytes),
		})
	}
	if cfg.MaxExpressionDepth <= 0 {
		errs = append(errs, FieldError{
			Field:   "compiler.max_expression_depth",
			Message: fmt.Sprintf("must be positive, got %d", cfg.MaxExpressionDepth),
		})
	}

	return errs
}

// validateStore validates script store configuration.
func validateStore(cfg *StoreConfig) []FieldError {
	var errs []FieldError

	switch cfg.Mode {
	case "memory":
		if cfg.Watch {
			errs = append(errs, FieldError{
				Field:   "store.watch",
				Message: "watch requires store mode 'dir'",
			})
		}
	case "dir":
		if cfg.Dir == "" {
			errs = append(errs, FieldError{
				Field:   "store.dir",
				Message: "directory is required when store mode is 'dir'",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "store.mode",
			Message: fmt.Sprintf("invalid store mode %q: must be 'memory' or 'dir'", cfg.Mode),
		})
	}

	if cfg.DebounceInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "store.debounce_interval",
			Message: "debounce interval cannot be negative",
		})
	}

	if cfg.ResyncSchedule != "" {
		if _, err := cron.ParseStandard(cfg.ResyncSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "store.resync_schedule",
				Message: fmt.Sprintf("invalid cron schedule %q: %v", cfg.ResyncSchedule, err),
			})
		}
	}

	return errs
}

// validateServer validates the watch-mode HTTP server.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}

	durations := []struct {
		field string
		value time.Duration
	}{
		{"server.read_header_timeout", cfg.ReadHeaderTimeout},
		{"server.shutdown_timeout", cfg.ShutdownTimeout},
		{"server.health_check_timeout", cfg.HealthCheckTimeout},
	}
	for _, d := range durations {
		if d.value < 0 {
			errs = append(errs, FieldError{
				Field:   d.field,
				Message: "timeout cannot be negative",
			})
		}
	}

	return errs
}

// validateTelemetry validates logging, metrics and tracing configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	// Validate logging level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	// Validate logging format
	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Logging.Format),
		})
	}

	// Validate metrics endpoint
	if cfg.Metrics.Enabled {
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: fmt.Sprintf("metrics path must start with '/', got %q", cfg.Metrics.Path),
			})
		}
	}

	// Validate tracing configuration
	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	validSamplers := map[string]bool{"always": true, "never": true, "ratio": true}
	if !validSamplers[cfg.Tracing.Sampler] {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	return errs
}
