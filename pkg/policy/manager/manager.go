package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"mercator-hq/rulescript/pkg/config"
	"mercator-hq/rulescript/pkg/policy/engine"
	"mercator-hq/rulescript/pkg/policy/scope"
	"mercator-hq/rulescript/pkg/policy/store"
)

// Config contains configuration for the script manager.
type Config struct {
	// DebounceInterval is the quiet period after a file change before the
	// script is recompiled (default: 100ms)
	DebounceInterval time.Duration

	// ResyncSchedule is a cron expression for periodic full reloads.
	// Empty disables resync.
	ResyncSchedule string

	// Concurrency bounds parallel compiles during LoadAll (default: 4)
	Concurrency int
}

// DefaultConfig returns the default manager configuration.
func DefaultConfig() *Config {
	return &Config{
		DebounceInterval: config.DefaultDebounceInterval,
		Concurrency:      4,
	}
}

// FromStoreConfig builds a manager configuration from the store section of
// the application configuration.
func FromStoreConfig(cfg config.StoreConfig) *Config {
	c := DefaultConfig()
	if cfg.DebounceInterval > 0 {
		c.DebounceInterval = cfg.DebounceInterval
	}
	c.ResyncSchedule = cfg.ResyncSchedule
	return c
}

// LoadReport summarizes a LoadAll run.
type LoadReport struct {
	// Loaded lists scripts that compiled, including cache hits
	Loaded []scope.Descriptor

	// Failed lists scripts that could not be read or compiled
	Failed []scope.Descriptor

	// Evicted lists cached scopes whose script no longer exists
	Evicted []scope.Descriptor

	// Duration is the wall time of the run
	Duration time.Duration
}

// Manager connects a script store to the rule engine. It is the only
// component that reads or writes scripts: the engine itself performs no I/O.
//
// Scripts are compiled before they are saved, so the store only ever holds
// scripts that compiled. A script that fails to compile on load leaves the
// previously compiled rule set active.
type Manager struct {
	engine *engine.Engine
	store  store.ScriptStore
	config *Config
	logger *slog.Logger

	// mu protects failures and lastLoad
	mu       sync.RWMutex
	failures map[scope.Descriptor]error
	lastLoad time.Time

	// loadMu serializes LoadAll runs
	loadMu sync.Mutex
}

// New creates a script manager.
func New(eng *engine.Engine, st store.ScriptStore, cfg *Config, logger *slog.Logger) (*Manager, error) {
	if eng == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		engine:   eng,
		store:    st,
		config:   cfg,
		logger:   logger.With("component", "manager"),
		failures: make(map[scope.Descriptor]error),
	}, nil
}

// Engine returns the engine scripts are compiled into.
func (m *Manager) Engine() *engine.Engine {
	return m.engine
}

// Load reads a script from the store and compiles it into the engine.
//
// It returns a *LoadError when the script cannot be read and a
// *CompileError when it does not compile. In both cases the previously
// compiled rule set stays active.
func (m *Manager) Load(ctx context.Context, scopeType scope.Type, scopeID string) (*engine.CompileResult, error) {
	desc := scope.New(scopeType, scopeID)

	text, err := m.store.GetScript(ctx, scopeType, scopeID)
	if err != nil {
		loadErr := &LoadError{Scope: desc, Cause: err}
		m.setFailure(desc, loadErr)
		return nil, loadErr
	}

	res, err := m.engine.Compile(ctx, scopeType, scopeID, text)
	if err != nil {
		return nil, err
	}
	if !res.OK {
		compileErr := &CompileError{Scope: desc, Diagnostics: res.Diagnostics}
		m.setFailure(desc, compileErr)
		m.logger.Warn("keeping last good rule set",
			"scope", desc,
			"diagnostics", len(res.Diagnostics),
		)
		return res, compileErr
	}

	m.setFailure(desc, nil)
	return res, nil
}

// Save compiles text and writes it to the store only if it compiled.
// The compile result is returned in either case so callers can show the
// diagnostics; a failed compile returns a *CompileError and leaves both
// the store and the active rule set untouched.
func (m *Manager) Save(ctx context.Context, scopeType scope.Type, scopeID, text string) (*engine.CompileResult, error) {
	desc := scope.New(scopeType, scopeID)

	res, err := m.engine.Compile(ctx, scopeType, scopeID, text)
	if err != nil {
		return nil, err
	}
	if !res.OK {
		return res, &CompileError{Scope: desc, Diagnostics: res.Diagnostics}
	}

	if err := m.store.SaveScript(ctx, scopeType, scopeID, text); err != nil {
		return res, fmt.Errorf("failed to save script %s: %w", desc, err)
	}

	m.setFailure(desc, nil)
	m.logger.Info("saved script", "scope", desc, "compile_id", res.CompileID)
	return res, nil
}

// Delete removes a script from the store and evicts its rule set.
func (m *Manager) Delete(ctx context.Context, scopeType scope.Type, scopeID string) error {
	desc := scope.New(scopeType, scopeID)

	deleter, ok := m.store.(store.Deleter)
	if !ok {
		return fmt.Errorf("store %T does not support deletion", m.store)
	}
	if err := deleter.DeleteScript(ctx, scopeType, scopeID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to delete script %s: %w", desc, err)
	}

	m.engine.Evict(scopeType, scopeID)
	m.setFailure(desc, nil)
	return nil
}

// LoadAll compiles every script in the store and evicts cached scopes whose
// script is gone. Scripts are compiled in parallel. Individual failures do
// not stop the run; they are reported in the returned *ErrorList.
func (m *Manager) LoadAll(ctx context.Context) (*LoadReport, error) {
	lister, ok := m.store.(store.Lister)
	if !ok {
		return nil, fmt.Errorf("store %T cannot list scripts", m.store)
	}

	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	start := time.Now()
	descs, err := lister.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list scripts: %w", err)
	}

	report := &LoadReport{}
	errs := make([]error, len(descs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.config.Concurrency)
	for i, desc := range descs {
		i, desc := i, desc
		g.Go(func() error {
			_, err := m.Load(gctx, desc.Type, desc.ID)
			errs[i] = err
			// Context errors stop the run; script errors do not
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	errList := &ErrorList{}
	for i, desc := range descs {
		if errs[i] != nil {
			report.Failed = append(report.Failed, desc)
			errList.Add(errs[i])
		} else {
			report.Loaded = append(report.Loaded, desc)
		}
	}

	present := make(map[scope.Descriptor]bool, len(descs))
	for _, desc := range descs {
		present[desc] = true
	}
	for _, desc := range m.engine.Scopes() {
		if !present[desc] && m.engine.Evict(desc.Type, desc.ID) {
			report.Evicted = append(report.Evicted, desc)
			m.setFailure(desc, nil)
		}
	}

	report.Duration = time.Since(start)

	m.mu.Lock()
	m.lastLoad = time.Now()
	m.mu.Unlock()

	m.logger.Info("loaded scripts",
		"loaded", len(report.Loaded),
		"failed", len(report.Failed),
		"evicted", len(report.Evicted),
		"duration_ms", report.Duration.Milliseconds(),
	)

	return report, errList.ToError()
}

// Failures returns the last load or compile error per scope. Scopes that
// loaded successfully since their last failure are not included.
func (m *Manager) Failures() map[scope.Descriptor]error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[scope.Descriptor]error, len(m.failures))
	for desc, err := range m.failures {
		out[desc] = err
	}
	return out
}

// LastLoad returns when LoadAll last completed.
func (m *Manager) LastLoad() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastLoad
}

func (m *Manager) setFailure(desc scope.Descriptor, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		delete(m.failures, desc)
		return
	}
	m.failures[desc] = err
}
