// Package cache provides a small in-memory LRU with per-entry expiry. It backs
// the gateway's remote version lists and tool details, which are slow to fetch
// and change rarely.
package cache

import (
	"container/list"
	"sync"
	"time"
)

type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
	element   *list.Element
}

// LRU is a generic LRU cache with TTL support. Expired entries are dropped
// lazily on access and by Cleanup.
type LRU[K comparable, V any] struct {
	capacity  int
	ttl       time.Duration
	entries   map[K]*entry[K, V]
	evictList *list.List
	mu        sync.Mutex

	now func() time.Time
}

// NewLRU creates a cache holding at most capacity entries, each valid for ttl.
// A non-positive ttl disables expiry.
func NewLRU[K comparable, V any](capacity int, ttl time.Duration) *LRU[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU[K, V]{
		capacity:  capacity,
		ttl:       ttl,
		entries:   make(map[K]*entry[K, V]),
		evictList: list.New(),
		now:       time.Now,
	}
}

// Get returns the cached value and true if present and not expired.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.expired(e, c.now()) {
		c.removeEntry(e)
		return zero, false
	}

	c.evictList.MoveToFront(e.element)
	return e.value, true
}

// Set adds or refreshes a value.
func (c *LRU[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.evictList.MoveToFront(e.element)
		return
	}

	e := &entry[K, V]{key: key, value: value, expiresAt: expiresAt}
	e.element = c.evictList.PushFront(e)
	c.entries[key] = e

	for c.evictList.Len() > c.capacity {
		oldest := c.evictList.Back()
		c.removeEntry(oldest.Value.(*entry[K, V]))
	}
}

// Delete removes a key.
func (c *LRU[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.removeEntry(e)
	}
}

// Clear removes all entries.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*entry[K, V])
	c.evictList = list.New()
}

// Len returns the number of entries, expired ones included until cleaned.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Cleanup removes expired entries and returns how many were removed.
func (c *LRU[K, V]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for _, e := range c.entries {
		if c.expired(e, now) {
			c.removeEntry(e)
			removed++
		}
	}
	return removed
}

func (c *LRU[K, V]) expired(e *entry[K, V], now time.Time) bool {
	return c.ttl > 0 && now.After(e.expiresAt)
}

func (c *LRU[K, V]) removeEntry(e *entry[K, V]) {
	c.evictList.Remove(e.element)
	delete(c.entries, e.key)
}
