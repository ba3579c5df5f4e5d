// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package cache

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultCapacity bounds a cache when no explicit size is configured.
const DefaultCapacity = 32

// entry is a node in the insertion-ordered doubly-linked list.
type entry struct {
	key        string
	value      any
	insertedAt time.Time
	prev       *entry
	next       *entry
}

// Cache is a thread-safe memoization cache with TTL and a capacity bound.
//
// Semantics:
//   - An entry is invisible once now > insertedAt + ttl (for ttl > 0).
//     A ttl of 0 means entries never expire.
//   - When capacity is exceeded, the least recently inserted entry is
//     evicted first. Access order is irrelevant; overwriting an existing
//     key updates its value and timestamp but keeps its queue position.
//
// A doubly-linked list tracks insertion order and a map provides O(1)
// lookup, mirroring the usual list+map cache layout.
type Cache struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration
	clock    clock.Clock

	items map[string]*entry

	// head.next is the oldest insertion, tail.prev the newest.
	head *entry
	tail *entry

	hits   int64
	misses int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock substitutes the wall clock, letting tests control TTL expiry.
func WithClock(clk clock.Clock) Option {
	return func(c *Cache) {
		c.clock = clk
	}
}

// New creates a cache holding at most capacity entries whose values expire
// ttl after insertion. A non-positive capacity falls back to
// DefaultCapacity; a ttl of 0 disables expiry.
func New(capacity int, ttl time.Duration, opts ...Option) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	c := &Cache{
		capacity: capacity,
		ttl:      ttl,
		clock:    clock.New(),
		items:    make(map[string]*entry, capacity),
		head:     &entry{},
		tail:     &entry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head

	return c
}

// Get retrieves a value from the cache.
// Expired entries are removed lazily and reported as misses.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.items[key]
	if !exists {
		c.misses++
		return nil, false
	}

	if c.expired(e) {
		c.removeEntry(e)
		c.misses++
		return nil, false
	}

	c.hits++
	return e.value, true
}

// Put inserts or overwrites a value.
// Overwriting refreshes the timestamp without changing eviction order;
// new keys append to the back of the queue and may evict the front.
func (c *Cache) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()

	if e, exists := c.items[key]; exists {
		e.value = value
		e.insertedAt = now
		return
	}

	e := &entry{
		key:        key,
		value:      value,
		insertedAt: now,
	}
	c.appendEntry(e)
	c.items[key] = e

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
}

// Remove deletes an entry. Returns true if the key was present.
func (c *Cache) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, exists := c.items[key]; exists {
		c.removeEntry(e)
		return true
	}
	return false
}

// Len returns the current number of entries, including any not yet
// lazily expired.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear removes all entries and resets statistics.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*entry, c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
	c.hits = 0
	c.misses = 0
}

// Stats returns hit/miss counters and the current size.
func (c *Cache) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.items)
}

// Internal methods (must be called with mu held)

func (c *Cache) expired(e *entry) bool {
	if c.ttl <= 0 {
		return false
	}
	return c.clock.Now().After(e.insertedAt.Add(c.ttl))
}

// appendEntry adds an entry at the back of the queue (newest position).
func (c *Cache) appendEntry(e *entry) {
	e.prev = c.tail.prev
	e.next = c.tail
	c.tail.prev.next = e
	c.tail.prev = e
}

// removeEntry unlinks an entry and drops it from the map.
func (c *Cache) removeEntry(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
}

// evictOldest removes the least recently inserted entry.
func (c *Cache) evictOldest() {
	oldest := c.head.next
	if oldest == c.tail {
		return
	}
	c.removeEntry(oldest)
}
