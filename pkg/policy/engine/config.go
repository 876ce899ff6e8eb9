package engine

import (
	"fmt"

	"mercator-hq/rulescript/pkg/config"
	"mercator-hq/rulescript/pkg/rsl"
	"mercator-hq/rulescript/pkg/rsl/parser"
)

// Config contains configuration for the rule engine.
type Config struct {
	// MaxScriptBytes rejects larger scripts before lexing. 0 disables the limit.
	// Default: 1 MiB.
	MaxScriptBytes int

	// MaxExpressionDepth bounds expression nesting.
	// Default: 32.
	MaxExpressionDepth int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxScriptBytes:     rsl.DefaultMaxScriptBytes,
		MaxExpressionDepth: parser.DefaultMaxDepth,
	}
}

// FromCompilerConfig builds an engine configuration from the compiler
// section of the application configuration.
func FromCompilerConfig(cfg config.CompilerConfig) *Config {
	return &Config{
		MaxScriptBytes:     cfg.MaxScriptBytes,
		MaxExpressionDepth: cfg.MaxExpressionDepth,
	}
}

// Validate validates the engine configuration.
func (c *Config) Validate() error {
	if c.MaxScriptBytes < 0 {
		return fmt.Errorf("%w: max script bytes cannot be negative", ErrInvalidConfig)
	}
	if c.MaxExpressionDepth <= 0 {
		return fmt.Errorf("%w: max expression depth must be positive", ErrInvalidConfig)
	}
	return nil
}

// WithMaxScriptBytes sets the script size limit.
func (c *Config) WithMaxScriptBytes(n int) *Config {
	c.MaxScriptBytes = n
	return c
}

// WithMaxExpressionDepth sets the expression nesting limit.
func (c *Config) WithMaxExpressionDepth(depth int) *Config {
	c.MaxExpressionDepth = depth
	return c
}
