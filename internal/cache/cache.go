// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/waypoint/internal/metrics"
)

// Key addresses one page of one source query.
type Key struct {
	Source string
	Query  string
	Offset int
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s@%d", k.Source, k.Query, k.Offset)
}

// Stats tracks cache performance.
type Stats struct {
	Hits          int64
	Misses        int64
	Evictions     int64
	Invalidations int64
	Entries       int
	LastSweep     time.Time
}

// HitRate returns hits as a percentage of lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// entry is a node of the recency list.
type entry[V any] struct {
	key      Key
	value    V
	storedAt time.Time
	prev     *entry[V]
	next     *entry[V]
}

// PageCache is a thread-safe cache of source pages with a short staleness
// window and LRU eviction at capacity.
//
// Entries older than the stale time are treated as misses and dropped on
// access; Sweep removes the rest in bulk. Mutations call InvalidateQuery or
// InvalidateSource so readers refetch instead of waiting out the window.
type PageCache[V any] struct {
	mu sync.Mutex

	staleTime  time.Duration
	maxEntries int
	now        func() time.Time

	items map[Key]*entry[V]

	// head.next is the most recently used, tail.prev the least.
	head *entry[V]
	tail *entry[V]

	stats Stats
}

// New returns a cache. Non-positive arguments fall back to 30s and 2048.
func New[V any](staleTime time.Duration, maxEntries int) *PageCache[V] {
	if staleTime <= 0 {
		staleTime = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 2048
	}
	c := &PageCache[V]{
		staleTime:  staleTime,
		maxEntries: maxEntries,
		now:        time.Now,
		items:      make(map[Key]*entry[V]),
		head:       &entry[V]{},
		tail:       &entry[V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// StaleTime returns the staleness window.
func (c *PageCache[V]) StaleTime() time.Duration {
	return c.staleTime
}

// Get returns the page stored under k if it is still fresh.
func (c *PageCache[V]) Get(k Key) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.items[k]
	if !ok {
		c.stats.Misses++
		metrics.RecordCacheLookup(k.Source, false)
		return zero, false
	}
	if c.now().Sub(e.storedAt) > c.staleTime {
		c.remove(e)
		c.stats.Misses++
		c.stats.Evictions++
		metrics.RecordCacheLookup(k.Source, false)
		return zero, false
	}

	c.moveToFront(e)
	c.stats.Hits++
	metrics.RecordCacheLookup(k.Source, true)
	return e.value, true
}

// Set stores v under k, evicting the least recently used page at capacity.
func (c *PageCache[V]) Set(k Key, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if e, ok := c.items[k]; ok {
		e.value = v
		e.storedAt = now
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: k, value: v, storedAt: now}
	c.items[k] = e
	c.addToFront(e)

	for len(c.items) > c.maxEntries {
		c.remove(c.tail.prev)
		c.stats.Evictions++
	}
	metrics.CacheSize.Set(float64(len(c.items)))
}

// InvalidateQuery drops every page of (source, query). It returns the
// number of pages removed.
func (c *PageCache[V]) InvalidateQuery(source, query, reason string) int {
	return c.invalidate(source, reason, func(k Key) bool {
		return k.Source == source && k.Query == query
	})
}

// InvalidateSource drops every page of every query of source.
func (c *PageCache[V]) InvalidateSource(source, reason string) int {
	return c.invalidate(source, reason, func(k Key) bool {
		return k.Source == source
	})
}

func (c *PageCache[V]) invalidate(source, reason string, match func(Key) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k, e := range c.items {
		if match(k) {
			c.remove(e)
			n++
		}
	}
	c.stats.Invalidations += int64(n)
	if n > 0 {
		metrics.CacheInvalidations.WithLabelValues(source, reason).Add(float64(n))
		metrics.CacheSize.Set(float64(len(c.items)))
	}
	return n
}

// Sweep removes stale pages and returns how many were dropped.
func (c *PageCache[V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for _, e := range c.items {
		if now.Sub(e.storedAt) > c.staleTime {
			c.remove(e)
			n++
		}
	}
	c.stats.Evictions += int64(n)
	c.stats.LastSweep = now
	metrics.CacheSize.Set(float64(len(c.items)))
	return n
}

// Clear drops everything.
func (c *PageCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[Key]*entry[V])
	c.head.next = c.tail
	c.tail.prev = c.head
	metrics.CacheSize.Set(0)
}

// Len returns the number of stored pages, fresh or not.
func (c *PageCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns a snapshot of the counters.
func (c *PageCache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = len(c.items)
	return s
}

func (c *PageCache[V]) addToFront(e *entry[V]) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *PageCache[V]) unlink(e *entry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
}

func (c *PageCache[V]) moveToFront(e *entry[V]) {
	c.unlink(e)
	c.addToFront(e)
}

func (c *PageCache[V]) remove(e *entry[V]) {
	c.unlink(e)
	delete(c.items, e.key)
}
