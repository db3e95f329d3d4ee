package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Cache is a multi-namespace LRU cache with byte and entry ceilings, lazy TTL
// expiry and path-aware invalidation. It is safe for concurrent use.
//
// Each namespace is guarded by its own mutex, so a read, a write and the
// eviction it triggers are applied atomically per namespace.
//
// Ownership model:
// Cache owns the background writer that persists its state. Call Close to
// flush and stop it.
type Cache struct {
	stores [namespaceCount]*namespaceStore[any]

	cfgMu sync.RWMutex
	cfg   Config

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64

	now func() time.Time
	log zerolog.Logger

	// persist is nil when no state store was configured or the store was
	// unavailable at construction time.
	persist   *persister
	closeOnce sync.Once
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	config Config
	store  StateStore
	logger zerolog.Logger
	clock  func() time.Time
}

// WithConfig sets the initial configuration. A state record restored from the
// store takes precedence over it.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithStateStore sets the durable store used to restore and persist config
// and counters.
func WithStateStore(store StateStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// New constructs a Cache. When a state store is configured, New restores the
// persisted config and counters from it and starts the background writer.
func New(ctx context.Context, opts ...Option) (*Cache, error) {
	o := options{
		config: DefaultConfig(),
		logger: zerolog.Nop(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := o.config.Validate(); err != nil {
		return nil, err
	}

	c := &Cache{
		cfg: o.config,
		now: o.clock,
		log: o.logger,
	}
	for _, ns := range Namespaces() {
		c.stores[ns] = newNamespaceStore[any](ns)
	}

	if o.store != nil && c.restore(ctx, o.store) {
		c.persist = newPersister(o.store, c.snapshot, c.log)
	}

	return c, nil
}

// Close flushes any pending state write and stops the background writer.
// The cache remains usable in memory afterwards. Close is safe to call
// multiple times.
func (c *Cache) Close() error {
	c.closeOnce.Do(func() {
		if c.persist == nil {
			return
		}
		if c.Config().PersistenceEnabled {
			c.persist.request()
		}
		c.persist.close()
	})
	return nil
}

// store returns the key space of ns. An undeclared namespace is a programming
// error and panics.
func (c *Cache) store(ns Namespace) *namespaceStore[any] {
	if !ns.Valid() {
		panic(fmt.Sprintf("cache: %v: %d", ErrInvalidNamespace, uint8(ns)))
	}
	return c.stores[ns]
}

// Get returns the value cached under key in ns. An entry older than its TTL
// is removed and reported as a miss.
func (c *Cache) Get(ns Namespace, key string) (any, bool) {
	s := c.store(ns)
	v, res := s.get(key, c.now(), c.Config().DefaultTTL)

	switch res {
	case lookupHit:
		c.hits.Add(1)
		return v, true
	case lookupExpired:
		c.misses.Add(1)
		c.log.Debug().Str("namespace", ns.String()).Str("key", key).Msg("cache entry expired")
		c.schedulePersist()
	default:
		c.misses.Add(1)
	}
	return nil, false
}

// Peek returns a copy of the entry under key without recording a hit or a miss
// and without changing its recency. Expired entries are returned as they are.
func (c *Cache) Peek(ns Namespace, key string) (Entry[any], bool) {
	return c.store(ns).peek(key)
}

// Set caches value under key in ns using the configured default TTL.
func (c *Cache) Set(ns Namespace, key string, value any) {
	c.SetWithTTL(ns, key, value, 0)
}

// SetWithTTL caches value under key in ns. A positive ttl overrides the
// default TTL for this entry.
//
// Least recently used entries are evicted first to make room. A value larger
// than MaxBytes on its own is still stored once the namespace is empty.
func (c *Cache) SetWithTTL(ns Namespace, key string, value any, ttl time.Duration) {
	s := c.store(ns)
	size := EstimateSize(value)

	evicted, l := s.set(key, value, size, ttl, c.now(), func() limits {
		return c.Config().limits()
	})
	if evicted > 0 {
		c.evictions.Add(uint64(evicted))
		c.log.Debug().
			Str("namespace", ns.String()).
			Int("evicted", evicted).
			Int64("incoming_bytes", size).
			Msg("evicted least recently used entries")
	}
	if size > l.maxBytes {
		c.log.Debug().
			Str("namespace", ns.String()).
			Str("key", key).
			Int64("size", size).
			Int64("max_bytes", l.maxBytes).
			Msg("stored entry larger than namespace ceiling")
	}

	c.schedulePersist()
}

// Delete removes key from ns.
func (c *Cache) Delete(ns Namespace, key string) {
	if c.store(ns).remove(key) {
		c.schedulePersist()
	}
}

// Clear removes every entry of ns.
func (c *Cache) Clear(ns Namespace) {
	n := c.store(ns).clear()
	c.log.Debug().Str("namespace", ns.String()).Int("removed", n).Msg("cleared namespace")
	c.schedulePersist()
}

// ClearAll removes every entry of every namespace and resets the counters.
func (c *Cache) ClearAll() {
	for _, s := range c.stores {
		s.clear()
	}
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
	c.schedulePersist()
}

// Config returns the current configuration.
func (c *Cache) Config() Config {
	c.cfgMu.RLock()
	defer c.cfgMu.RUnlock()
	return c.cfg
}

// UpdateConfig applies a partial configuration. Lowered ceilings take effect
// immediately: every namespace is trimmed in LRU order.
func (c *Cache) UpdateConfig(update ConfigUpdate) error {
	c.cfgMu.Lock()
	before := c.cfg
	next := update.Apply(before)
	if err := next.Validate(); err != nil {
		c.cfgMu.Unlock()
		return err
	}
	c.cfg = next
	c.cfgMu.Unlock()

	evicted := 0
	for _, s := range c.stores {
		evicted += s.trim(next.limits())
	}
	if evicted > 0 {
		c.evictions.Add(uint64(evicted))
	}

	c.log.Debug().
		Int64("max_bytes", next.MaxBytes).
		Int("max_entries", next.MaxEntries).
		Dur("default_ttl", next.DefaultTTL).
		Bool("persistence_enabled", next.PersistenceEnabled).
		Int("evicted", evicted).
		Msg("cache config updated")

	// Turning persistence off is itself persisted, so a restart honors it.
	if before.PersistenceEnabled || next.PersistenceEnabled {
		c.requestPersist()
	}
	return nil
}

// schedulePersist requests a state write when persistence is enabled.
func (c *Cache) schedulePersist() {
	if c.Config().PersistenceEnabled {
		c.requestPersist()
	}
}

func (c *Cache) requestPersist() {
	if c.persist != nil {
		c.persist.request()
	}
}

// persisting reports whether state writes are currently reaching the store.
func (c *Cache) persisting() bool {
	return c.persist != nil && !c.persist.failed.Load() && c.Config().PersistenceEnabled
}
