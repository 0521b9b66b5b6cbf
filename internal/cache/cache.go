package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// sweepEvery is the number of writes between sweeps of expired entries
const sweepEvery = 100

// Cache stores values of type V with an expiration time.
// It is safe for concurrent use.
type Cache[V any] struct {
	items           sync.Map
	updateMu        sync.Mutex
	writes          atomic.Uint32
	defaultDuration time.Duration
	now             func() time.Time
}

type item[V any] struct {
	data    V
	expires int64
}

// New creates a cache whose entries live for defaultDuration unless Set says otherwise.
// Expired entries are dropped on read and swept every few writes.
func New[V any](defaultDuration time.Duration) *Cache[V] {
	if defaultDuration <= 0 {
		defaultDuration = 10 * time.Minute
	}

	return &Cache[V]{
		defaultDuration: defaultDuration,
		now:             time.Now,
	}
}

// Set stores value under key. A zero duration uses the default; a negative
// one stores the value forever.
func (c *Cache[V]) Set(key string, value V, duration time.Duration) {
	var expires int64

	if duration == 0 {
		duration = c.defaultDuration
	}
	if duration > 0 {
		expires = c.now().Add(duration).UnixNano()
	}

	c.items.Store(key, item[V]{data: value, expires: expires})

	if c.writes.Add(1) >= sweepEvery {
		c.writes.Store(0)
		c.DeleteExpired()
	}
}

// Update replaces the value under key with fn(current, found) and returns the
// new value. Concurrent Update calls on the cache are serialized, so a
// read-modify-write never loses a change made by another Update.
func (c *Cache[V]) Update(key string, fn func(current V, found bool) V, duration time.Duration) V {
	c.updateMu.Lock()
	defer c.updateMu.Unlock()

	current, found := c.Get(key)
	next := fn(current, found)
	c.Set(key, next, duration)
	return next
}

// SetUntil stores value under key until the given instant.
// An instant in the past is ignored.
func (c *Cache[V]) SetUntil(key string, value V, until time.Time) {
	d := until.Sub(c.now())
	if d <= 0 {
		return
	}
	c.Set(key, value, d)
}

// Get returns the value for key, if present and not expired
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V

	obj, ok := c.items.Load(key)
	if !ok {
		return zero, false
	}

	it := obj.(item[V])
	if it.expires > 0 && c.now().UnixNano() > it.expires {
		c.items.Delete(key)
		return zero, false
	}

	return it.data, true
}

// Has reports whether key holds a live value
func (c *Cache[V]) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// DeleteExpired drops every expired entry
func (c *Cache[V]) DeleteExpired() {
	now := c.now().UnixNano()

	c.items.Range(func(key, value any) bool {
		it := value.(item[V])
		if it.expires > 0 && now > it.expires {
			c.items.Delete(key)
		}
		return true
	})
}

// Delete removes key
func (c *Cache[V]) Delete(key string) {
	c.items.Delete(key)
}
