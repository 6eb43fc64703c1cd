package cache

import (
	"container/list"
	"sync"
	"time"
)

// Policy selects which entry Set evicts when the cache is at capacity.
type Policy int

const (
	// EvictOldest removes the entry that was inserted earliest among the
	// currently held entries (FIFO over insertion order). Overwriting a key
	// restamps it and counts as a fresh insertion.
	EvictOldest Policy = iota
	// EvictLRU removes the least recently used entry. Hits via Get and
	// IsValid refresh recency; EvictOldest ignores reads entirely.
	EvictLRU
)

// Cache is an in-memory key-value cache with per-entry TTL and a capacity
// bound. It is safe for concurrent use by multiple goroutines.
//
// Absence is a normal result, never an error: Get reports a miss for unknown
// and expired keys alike. Expired entries are removed lazily, by the read
// that observes them; there is no background sweep. Computing a fresh value
// on a miss is the caller's job, the cache never calls back into a data
// source.
type Cache[V any] struct {
	mu       sync.Mutex
	capacity int
	policy   Policy
	entries  map[string]*list.Element
	order    *list.List // Front = next eviction candidate, Back = most recent
}

// entry is the value stored in the order list elements. The key lives here
// too because eviction starts from list nodes.
type entry[V any] struct {
	key      string
	value    V
	storedAt time.Time
	ttl      time.Duration // <= 0 means "never expires"
}

func (e *entry[V]) expired(now time.Time) bool {
	return e.ttl > 0 && now.Sub(e.storedAt) >= e.ttl
}

type options struct {
	policy Policy
}

// Option configures a Cache at construction time.
type Option func(*options)

// WithPolicy sets the eviction policy. The default is EvictOldest.
func WithPolicy(p Policy) Option {
	return func(o *options) { o.policy = p }
}

// New returns a cache holding at most capacity entries. capacity <= 0 means
// "unbounded" (no eviction). New never returns a nil Cache.
func New[V any](capacity int, opts ...Option) *Cache[V] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[V]{
		capacity: capacity,
		policy:   o.policy,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get returns the value stored for key if it is present and unexpired.
//
// An expired entry is removed as a side effect and reported as a miss; a
// clean miss has no side effect. Under EvictLRU a hit refreshes recency.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[V])
	if e.expired(time.Now()) {
		c.removeLocked(el)
		return zero, false
	}
	if c.policy == EvictLRU {
		c.order.MoveToBack(el)
	}
	return e.value, true
}

// Set inserts or overwrites the entry for key, stamping it with the current
// time. ttl <= 0 means the entry never expires by time.
//
// Inserting a new key at capacity first evicts exactly one entry, chosen by
// the eviction policy; only then is the new entry inserted.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()

	if el, ok := c.entries[key]; ok {
		e := el.Value.(*entry[V])
		e.value = value
		e.storedAt = now
		e.ttl = ttl
		c.order.MoveToBack(el)
		return
	}

	if c.capacity > 0 && len(c.entries) >= c.capacity {
		if el := c.order.Front(); el != nil {
			c.removeLocked(el)
		}
	}

	el := c.order.PushBack(&entry[V]{key: key, value: value, storedAt: now, ttl: ttl})
	c.entries[key] = el
}

// Delete removes the entry for key if present. Deleting an absent key is a
// no-op, not an error.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.removeLocked(el)
	}
}

// IsValid reports whether an unexpired entry exists for key. Like Get, it
// removes the entry if it turns out to be expired.
func (c *Cache[V]) IsValid(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return false
	}
	if el.Value.(*entry[V]).expired(time.Now()) {
		c.removeLocked(el)
		return false
	}
	if c.policy == EvictLRU {
		c.order.MoveToBack(el)
	}
	return true
}

// Len returns the number of currently stored entries.
//
// Len counts entries that have expired but have not been read since; lazy
// expiration removes them on the next Get or IsValid.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns keys in eviction order: the front of the slice goes first.
func (c *Cache[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*entry[V]).key)
	}
	return out
}

// Clear drops every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

func (c *Cache[V]) removeLocked(el *list.Element) {
	delete(c.entries, el.Value.(*entry[V]).key)
	c.order.Remove(el)
}
