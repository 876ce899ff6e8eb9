package manager

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"mercator-hq/rulescript/pkg/policy/scope"
	"mercator-hq/rulescript/pkg/policy/store"
)

// Watch recompiles scripts when their files change and evicts rule sets
// whose file is removed. It requires a *store.DirStore and blocks until the
// context is cancelled.
//
// Rapid changes are debounced; each changed file is compiled once after the
// quiet period. A file that stops compiling keeps its last good rule set.
func (m *Manager) Watch(ctx context.Context) error {
	dirStore, ok := m.store.(*store.DirStore)
	if !ok {
		return ErrWatchUnsupported
	}

	fw, err := NewFileWatcher(dirStore, m.config.DebounceInterval, m.logger)
	if err != nil {
		return err
	}
	defer fw.Close()

	return fw.Watch(ctx, func(paths []string) {
		m.reloadPaths(ctx, dirStore, paths)
	})
}

// reloadPaths recompiles or evicts the scripts behind changed files.
func (m *Manager) reloadPaths(ctx context.Context, dirStore *store.DirStore, paths []string) {
	for _, path := range paths {
		desc, ok := dirStore.Descriptor(path)
		if !ok {
			continue
		}

		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			if m.engine.Evict(desc.Type, desc.ID) {
				m.logger.Info("script removed", "scope", desc, "path", path)
			}
			m.setFailure(desc, nil)
			continue
		}

		if _, err := m.Load(ctx, desc.Type, desc.ID); err != nil {
			m.logger.Error("script reload failed", "scope", desc, "path", path, "error", err)
			continue
		}
		m.logger.Info("script reloaded", "scope", desc, "path", path)
	}
}

// FileWatcher watches a directory store for script changes.
// It implements debouncing to prevent reload storms.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	store    *store.DirStore
	logger   *slog.Logger
	debounce *Debouncer
	interval time.Duration

	// State
	mu      sync.Mutex
	running bool
}

// NewFileWatcher creates a file watcher for a directory store.
func NewFileWatcher(dirStore *store.DirStore, interval time.Duration, logger *slog.Logger) (*FileWatcher, error) {
	if dirStore == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if interval <= 0 {
		interval = DefaultConfig().DebounceInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher:  watcher,
		store:    dirStore,
		logger:   logger,
		debounce: NewDebouncer(interval),
		interval: interval,
	}, nil
}

// Watch watches the store's scope directories and calls onChange with the
// script files that changed after each quiet period. The scope directories
// are created if missing. It blocks until the context is cancelled.
func (fw *FileWatcher) Watch(ctx context.Context, onChange func(paths []string)) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	fw.running = true
	fw.mu.Unlock()

	defer func() {
		fw.mu.Lock()
		fw.running = false
		fw.mu.Unlock()
	}()

	for _, t := range scope.Types() {
		dir := filepath.Join(fw.store.Root(), t.Dir())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %q: %w", dir, err)
		}
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", dir, err)
		}
		fw.logger.Debug("watching directory", "path", dir)
	}

	fw.logger.Info("file watcher started",
		"path", fw.store.Root(),
		"debounce_ms", fw.interval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			fw.logger.Info("file watcher stopped")
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if !fw.shouldProcessEvent(event) {
				continue
			}

			fw.logger.Debug("file event detected",
				"path", event.Name,
				"op", event.Op.String(),
			)

			fw.debounce.Trigger(event.Name, onChange)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}

			fw.logger.Error("file watcher error", "error", err)
			// Continue watching despite errors
		}
	}
}

// Close stops pending callbacks and releases the fsnotify watcher.
func (fw *FileWatcher) Close() error {
	fw.debounce.Stop()

	if err := fw.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// shouldProcessEvent determines if an event concerns a script file.
func (fw *FileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}

	// Temp files written by DirStore.SaveScript are hidden
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}

	_, ok := fw.store.Descriptor(event.Name)
	return ok
}

// Debouncer collects keys from rapid events and hands them to the callback
// only after a quiet period.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	pending  map[string]struct{}
	callback func(keys []string)
	stopped  bool
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		pending:  make(map[string]struct{}),
	}
}

// Trigger records key and restarts the quiet period. When the period ends
// without new events, callback receives every key recorded since the last
// call, sorted.
func (d *Debouncer) Trigger(key string, callback func(keys []string)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending[key] = struct{}{}
	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	keys := make([]string, 0, len(d.pending))
	for key := range d.pending {
		keys = append(keys, key)
	}
	d.pending = make(map[string]struct{})
	cb := d.callback
	d.mu.Unlock()

	sort.Strings(keys)
	if cb != nil {
		cb(keys)
	}
}

// Stop cancels any pending callback. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = make(map[string]struct{})
	d.callback = nil
}
