package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pscheid92/vybe/internal/metrics"
)

// Cache is safe for concurrent use. Entries are replaced whole, never mutated.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	clock   clockwork.Clock
	metrics *metrics.CacheMetrics
}

type entry struct {
	value     any
	writtenAt time.Time
}

type Option func(*Cache)

// WithMetrics records hits, misses and invalidations.
func WithMetrics(m *metrics.CacheMetrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// New creates an empty cache reading time from clock.
func New(clock clockwork.Clock, opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		clock:   clock,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value stored under key if it was written less than ttl ago.
func (c *Cache) Get(key string, ttl time.Duration) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.miss("absent")
		return nil, false
	}

	if c.clock.Since(e.writtenAt) >= ttl {
		// Expired entries are left for the next Set to overwrite.
		c.miss("expired")
		return nil, false
	}

	if c.metrics != nil {
		c.metrics.Hits.Inc()
	}
	return e.value, true
}

// Lookup is Get with a type assertion. A value of another type counts as a miss.
func Lookup[T any](c *Cache, key string, ttl time.Duration) (T, bool) {
	var zero T
	v, ok := c.Get(key, ttl)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		c.miss("type")
		return zero, false
	}
	return typed, true
}

// Set stores value under key, stamped with the current time.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, writtenAt: c.clock.Now()}
	n := len(c.entries)
	c.mu.Unlock()

	c.size(n)
}

// Invalidate removes key. Used to force the next request to hit the producer.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	n := len(c.entries)
	c.mu.Unlock()

	c.invalidated(n)
}

// InvalidateAll removes every entry. Called on logout.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()

	c.invalidated(0)
}

// Len returns the number of entries held, including expired ones.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) miss(reason string) {
	if c.metrics != nil {
		c.metrics.Misses.WithLabelValues(reason).Inc()
	}
}

func (c *Cache) invalidated(n int) {
	if c.metrics != nil {
		c.metrics.Invalidations.Inc()
		c.metrics.Entries.Set(float64(n))
	}
}

func (c *Cache) size(n int) {
	if c.metrics != nil {
		c.metrics.Entries.Set(float64(n))
	}
}
