package cache

import (
	"sync"
	"time"
)

// TTLs used by the roster pipeline.
const (
	SeasonStatsTTL  = 10 * time.Minute
	RosterTTL       = 10 * time.Minute
	PlayerLookupTTL = 24 * time.Hour
	FailedLookupTTL = 5 * time.Minute
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Expiring is an in-memory key/value store with a per-entry absolute expiry.
// Expired entries are purged lazily on Get; there is no background sweep and
// no eviction beyond TTL. Safe for concurrent use.
type Expiring[V any] struct {
	mu    sync.Mutex
	items map[string]entry[V]
	now   func() time.Time
}

// Option configures an Expiring cache.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source (useful for tests).
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New creates an empty cache.
func New[V any](opts ...Option) *Expiring[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	return &Expiring[V]{
		items: make(map[string]entry[V]),
		now:   o.now,
	}
}

// Get returns the value stored under key, or false when it is absent or expired.
func (c *Expiring[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.items[key]
	if !ok {
		return zero, false
	}

	if !c.now().Before(e.expiresAt) {
		delete(c.items, key)
		return zero, false
	}

	return e.value, true
}

// Set stores value under key until now+ttl, replacing any existing entry.
func (c *Expiring[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry[V]{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
}

// Delete removes key if present.
func (c *Expiring[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Len reports the number of stored entries, including expired ones not yet purged.
func (c *Expiring[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
