package main

import (
	"context"
	"fmt"
	"os"

	"mercator-hq/rulescript/pkg/cli"
	"mercator-hq/rulescript/pkg/config"
	"mercator-hq/rulescript/pkg/policy/engine"
	"mercator-hq/rulescript/pkg/policy/manager"
	"mercator-hq/rulescript/pkg/policy/store"
	"mercator-hq/rulescript/pkg/telemetry/logging"
	"mercator-hq/rulescript/pkg/telemetry/metrics"
	"mercator-hq/rulescript/pkg/telemetry/tracing"
)

// env holds everything a command needs: configuration, logger, tracer and
// a rule engine wired to them.
type env struct {
	cfg     *config.Config
	logger  *logging.Logger
	tracer  *tracing.Tracer
	metrics *metrics.Collector
	engine  *engine.Engine
}

// setupOptions controls what newEnv wires.
type setupOptions struct {
	// quiet lowers the log level to warn for one-shot commands whose
	// output goes to stdout. --verbose still forces debug.
	quiet bool

	// withMetrics registers the Prometheus collector with the engine.
	withMetrics bool
}

// newEnv loads configuration from --config and builds the engine.
func newEnv(opts setupOptions) (*env, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError("config", err.Error())
	}
	cfg := config.GetConfig()

	logCfg := cfg.Telemetry.Logging
	switch {
	case verbose:
		logCfg.Level = "debug"
	case opts.quiet:
		logCfg.Level = "warn"
	}
	logger, err := logging.New(logging.FromConfig(logCfg, os.Stderr))
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	logger.SetDefault()

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.tracing", err.Error())
	}

	e := &env{
		cfg:    cfg,
		logger: logger,
		tracer: tracer,
	}

	engineOpts := []engine.Option{engine.WithTracer(tracer)}
	if opts.withMetrics && cfg.Telemetry.Metrics.Enabled {
		e.metrics = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
		engineOpts = append(engineOpts, engine.WithMetrics(e.metrics))
	}

	eng, err := engine.New(engine.FromCompilerConfig(cfg.Compiler), logger.Slog(), engineOpts...)
	if err != nil {
		return nil, cli.NewConfigError("compiler", err.Error())
	}
	e.engine = eng

	return e, nil
}

// close flushes and stops the tracer.
func (e *env) close() {
	if err := e.tracer.Shutdown(context.Background()); err != nil {
		e.logger.Warn("tracer shutdown failed", "error", err)
	}
}

// storeDir returns dir, falling back to the configured store directory.
func (e *env) storeDir(dir string) (string, error) {
	if dir == "" {
		dir = e.cfg.Store.Dir
	}
	if dir == "" {
		return "", cli.NewConfigError("dir", "a script directory is required (--dir or store.dir)")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", cli.NewConfigError("dir", err.Error())
	}
	if !info.IsDir() {
		return "", cli.NewConfigError("dir", fmt.Sprintf("%s is not a directory", dir))
	}
	return dir, nil
}

// loadDir compiles every script under dir and returns the manager. Scripts
// that fail to compile are reported as warnings; their scopes resolve as
// missing.
func (e *env) loadDir(ctx context.Context, dir string) (*manager.Manager, *store.DirStore, error) {
	dirStore := store.NewDirStore(dir, e.logger.Slog())

	m, err := manager.New(e.engine, dirStore, manager.FromStoreConfig(e.cfg.Store), e.logger.Slog())
	if err != nil {
		return nil, nil, err
	}

	// A report with an error means some scripts failed; no report means
	// the store could not be listed at all.
	report, err := m.LoadAll(ctx)
	if report == nil {
		return nil, nil, fmt.Errorf("failed to load scripts from %s: %w", dir, err)
	}
	failures := m.Failures()
	for _, desc := range report.Failed {
		e.logger.Warn("script skipped", "scope", desc.String(), "error", failures[desc])
	}

	return m, dirStore, nil
}
