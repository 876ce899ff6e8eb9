package config

import (
	"fmt"
	"sync"
)

var (
	// globalConfig holds the process-wide configuration used by the CLI.
	globalConfig *Config

	// configMutex protects access to globalConfig.
	configMutex sync.RWMutex
)

// Initialize loads configuration from path with environment variable
// overrides and stores it as the global configuration. Calling it again
// replaces the stored configuration only if loading succeeds.
func Initialize(path string) error {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	SetConfig(cfg)
	return nil
}

// GetConfig returns the global configuration, or defaults when Initialize
// has not been called.
func GetConfig() *Config {
	configMutex.RLock()
	cfg := globalConfig
	configMutex.RUnlock()

	if cfg == nil {
		return NewDefault()
	}
	return cfg
}

// SetConfig sets the global configuration instance.
// It is intended for tests and for Initialize.
func SetConfig(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = cfg
}
