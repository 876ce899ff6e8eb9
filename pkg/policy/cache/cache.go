package cache

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"mercator-hq/rulescript/pkg/policy/ruleset"
	"mercator-hq/rulescript/pkg/policy/scope"
)

// Name labels this cache in metrics.
const Name = "ruleset"

// Metrics receives cache events. *metrics.Collector implements it.
type Metrics interface {
	RecordCacheHit(cacheName string)
	RecordCacheMiss(cacheName string)
	RecordCacheEviction(cacheName string)
	UpdateCacheSize(cacheName string, size int)
}

// CompileFunc compiles the text the cache was asked about. It receives the
// content hash so the compiled set can carry it.
type CompileFunc func(hash uint64) (*ruleset.CompiledRuleSet, error)

// Result is the outcome of a Compile call.
type Result struct {
	// RuleSet is the compiled set, or nil when compilation failed.
	RuleSet *ruleset.CompiledRuleSet

	// Hash is the content hash of the compiled text.
	Hash uint64

	// Err is the compilation error, if any. The previous entry is kept.
	Err error

	// Cached is true when the text matched the committed entry and
	// nothing was compiled.
	Cached bool

	// Shared is true when the compilation was shared with a concurrent
	// request for the same key and text.
	Shared bool

	// Superseded is true when a newer request for the key committed first,
	// so this result was returned but not stored.
	Superseded bool
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits         uint64 `json:"hits"`
	Misses       uint64 `json:"misses"`
	Compilations uint64 `json:"compilations"`
	Failures     uint64 `json:"failures"`
	Superseded   uint64 `json:"superseded"`
	Evictions    uint64 `json:"evictions"`
	Entries      int    `json:"entries"`
}

type entry struct {
	set  *ruleset.CompiledRuleSet
	hash uint64
}

// Cache holds the last successfully compiled rule set per scope.
//
// Requests for one key are ordered by arrival: a compile result is only
// stored when no later request for the same key has already been stored
// or evicted. Concurrent requests with identical text share one
// compilation. The lock is held only around map access, never while
// compiling, so Get does not wait on in-flight compiles.
type Cache struct {
	// entries maps scopes to their committed rule set
	entries map[scope.Descriptor]*entry

	// arrivals is the last arrival sequence handed out per key
	arrivals map[scope.Descriptor]uint64

	// committed is the sequence of the last commit or eviction per key
	committed map[scope.Descriptor]uint64

	// mu protects the three maps above
	mu sync.RWMutex

	// flights deduplicates identical concurrent compiles
	flights singleflight.Group

	hits         atomic.Uint64
	misses       atomic.Uint64
	compilations atomic.Uint64
	failures     atomic.Uint64
	superseded   atomic.Uint64
	evictions    atomic.Uint64

	metrics Metrics
	logger  *slog.Logger
}

// New creates an empty cache. metrics may be nil.
func New(logger *slog.Logger, metrics Metrics) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		entries:   make(map[scope.Descriptor]*entry),
		arrivals:  make(map[scope.Descriptor]uint64),
		committed: make(map[scope.Descriptor]uint64),
		metrics:   metrics,
		logger:    logger,
	}
}

// Compile returns the rule set for text, compiling it with fn unless the
// committed entry for key already has the same content hash.
func (c *Cache) Compile(key scope.Descriptor, text string, fn CompileFunc) Result {
	hash := ContentHash(text)

	c.mu.Lock()
	seq := c.arrivals[key] + 1
	c.arrivals[key] = seq
	if e, ok := c.entries[key]; ok && e.hash == hash {
		// Re-committing keeps an older in-flight compile for the key
		// from overwriting this request.
		c.committed[key] = seq
		set := e.set
		c.mu.Unlock()

		c.hits.Add(1)
		if c.metrics != nil {
			c.metrics.RecordCacheHit(Name)
		}
		c.logger.Debug("rule set cache hit", "scope", key.String(), "hash", formatHash(hash))
		return Result{RuleSet: set, Hash: hash, Cached: true}
	}
	c.mu.Unlock()

	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.RecordCacheMiss(Name)
	}

	v, err, shared := c.flights.Do(flightKey(key, hash), func() (interface{}, error) {
		c.compilations.Add(1)
		set, err := fn(hash)
		if err != nil {
			c.failures.Add(1)
			return nil, err
		}
		return set, nil
	})
	if err != nil {
		c.logger.Debug("rule set compile failed, keeping previous entry",
			"scope", key.String(),
			"hash", formatHash(hash),
			"shared", shared,
		)
		return Result{Hash: hash, Err: err, Shared: shared}
	}
	set := v.(*ruleset.CompiledRuleSet)

	if !c.commit(key, seq, set, hash) {
		c.superseded.Add(1)
		c.logger.Debug("rule set compile superseded by a newer request",
			"scope", key.String(),
			"hash", formatHash(hash),
			"arrival", seq,
		)
		return Result{RuleSet: set, Hash: hash, Shared: shared, Superseded: true}
	}

	c.logger.Debug("rule set committed", "scope", key.String(), "hash", formatHash(hash), "arrival", seq)
	return Result{RuleSet: set, Hash: hash, Shared: shared}
}

// commit stores set unless a later arrival already committed or evicted.
func (c *Cache) commit(key scope.Descriptor, seq uint64, set *ruleset.CompiledRuleSet, hash uint64) bool {
	c.mu.Lock()
	if c.committed[key] > seq {
		c.mu.Unlock()
		return false
	}
	c.committed[key] = seq
	c.entries[key] = &entry{set: set, hash: hash}
	size := len(c.entries)
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.UpdateCacheSize(Name, size)
	}
	return true
}

// Get returns the committed rule set for key.
func (c *Cache) Get(key scope.Descriptor) (*ruleset.CompiledRuleSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.set, true
}

// Evict removes the entry for key. Compiles for key that arrived before
// the eviction will not restore it.
func (c *Cache) Evict(key scope.Descriptor) bool {
	c.mu.Lock()
	seq := c.arrivals[key] + 1
	c.arrivals[key] = seq
	c.committed[key] = seq
	_, ok := c.entries[key]
	delete(c.entries, key)
	size := len(c.entries)
	c.mu.Unlock()

	if !ok {
		return false
	}

	c.evictions.Add(1)
	if c.metrics != nil {
		c.metrics.RecordCacheEviction(Name)
		c.metrics.UpdateCacheSize(Name, size)
	}
	c.logger.Debug("rule set evicted", "scope", key.String())
	return true
}

// Keys returns the scopes with a committed entry, in no particular order.
func (c *Cache) Keys() []scope.Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]scope.Descriptor, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	return keys
}

// Len returns the number of committed entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
		Compilations: c.compilations.Load(),
		Failures:     c.failures.Load(),
		Superseded:   c.superseded.Load(),
		Evictions:    c.evictions.Load(),
		Entries:      c.Len(),
	}
}

func flightKey(key scope.Descriptor, hash uint64) string {
	return key.String() + "#" + formatHash(hash)
}

func formatHash(hash uint64) string {
	return fmt.Sprintf("%016x", hash)
}
