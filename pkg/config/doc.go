// Package config provides configuration management for rulescript.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("rulescript.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("rulescript.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention RULESCRIPT_SECTION_FIELD.
// For example:
//
//   - RULESCRIPT_STORE_DIR overrides store.dir
//   - RULESCRIPT_COMPILER_MAX_SCRIPT_BYTES overrides compiler.max_script_bytes
//   - RULESCRIPT_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Example Configuration
//
//	compiler:
//	  max_script_bytes: 1048576
//	  max_expression_depth: 32
//
//	store:
//	  mode: "dir"
//	  dir: "./rules"
//	  watch: true
//	  resync_schedule: "*/5 * * * *"
//
//	server:
//	  listen_address: "127.0.0.1:9464"
//	  shutdown_timeout: 10s
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//	  metrics:
//	    path: "/metrics"
package config
