// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package cache

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func newTestCache(stale time.Duration, max int) (*PageCache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := New[string](stale, max)
	c.now = clock.Now
	return c, clock
}

func TestPageCacheGetSet(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(time.Minute, 10)
	k := Key{Source: "likes", Query: "user:u1", Offset: 0}

	if _, ok := c.Get(k); ok {
		t.Fatal("empty cache should miss")
	}
	c.Set(k, "page0")
	if v, ok := c.Get(k); !ok || v != "page0" {
		t.Fatalf("Get = %q, %v", v, ok)
	}
	if _, ok := c.Get(Key{Source: "likes", Query: "user:u1", Offset: 20}); ok {
		t.Error("other offset should miss")
	}

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 2 || s.Entries != 1 {
		t.Errorf("stats = %+v", s)
	}
	if s.HitRate() < 33 || s.HitRate() > 34 {
		t.Errorf("hit rate = %v", s.HitRate())
	}
}

func TestPageCacheStaleness(t *testing.T) {
	t.Parallel()

	c, clock := newTestCache(30*time.Second, 10)
	k := Key{Source: "content", Query: "coffee", Offset: 0}
	c.Set(k, "v")

	clock.Advance(30 * time.Second)
	if _, ok := c.Get(k); !ok {
		t.Error("entry at exactly the stale time should still be fresh")
	}

	clock.Advance(time.Millisecond)
	if _, ok := c.Get(k); ok {
		t.Error("entry past the stale time should miss")
	}
	if c.Len() != 0 {
		t.Errorf("stale entry not dropped, len = %d", c.Len())
	}
}

func TestPageCacheSetRefreshes(t *testing.T) {
	t.Parallel()

	c, clock := newTestCache(10*time.Second, 10)
	k := Key{Source: "content", Query: "q", Offset: 0}
	c.Set(k, "old")
	clock.Advance(8 * time.Second)
	c.Set(k, "new")
	clock.Advance(8 * time.Second)

	if v, ok := c.Get(k); !ok || v != "new" {
		t.Errorf("Get = %q, %v, want refreshed value", v, ok)
	}
}

func TestPageCacheLRUEviction(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(time.Minute, 2)
	a := Key{Source: "s", Query: "a"}
	b := Key{Source: "s", Query: "b"}
	d := Key{Source: "s", Query: "d"}

	c.Set(a, "a")
	c.Set(b, "b")
	c.Get(a) // a is now most recent
	c.Set(d, "d")

	if _, ok := c.Get(b); ok {
		t.Error("least recently used entry should be evicted")
	}
	if _, ok := c.Get(a); !ok {
		t.Error("recently used entry should survive")
	}
	if c.Stats().Evictions != 1 {
		t.Errorf("evictions = %d, want 1", c.Stats().Evictions)
	}
}

func TestPageCacheInvalidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		run       func(c *PageCache[string]) int
		wantN     int
		wantAlive []Key
	}{
		{
			name:      "query",
			run:       func(c *PageCache[string]) int { return c.InvalidateQuery("collection", "c1", "add_item") },
			wantN:     2,
			wantAlive: []Key{{Source: "collection", Query: "c2"}, {Source: "likes", Query: "u1"}},
		},
		{
			name:      "source",
			run:       func(c *PageCache[string]) int { return c.InvalidateSource("collection", "test") },
			wantN:     3,
			wantAlive: []Key{{Source: "likes", Query: "u1"}},
		},
		{
			name:      "no match",
			run:       func(c *PageCache[string]) int { return c.InvalidateQuery("content", "x", "test") },
			wantN:     0,
			wantAlive: []Key{{Source: "collection", Query: "c1"}, {Source: "likes", Query: "u1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, _ := newTestCache(time.Minute, 10)
			c.Set(Key{Source: "collection", Query: "c1", Offset: 0}, "p0")
			c.Set(Key{Source: "collection", Query: "c1", Offset: 20}, "p1")
			c.Set(Key{Source: "collection", Query: "c2"}, "other")
			c.Set(Key{Source: "likes", Query: "u1"}, "likes")

			if n := tt.run(c); n != tt.wantN {
				t.Errorf("removed %d, want %d", n, tt.wantN)
			}
			for _, k := range tt.wantAlive {
				if _, ok := c.Get(k); !ok {
					t.Errorf("%s should survive", k)
				}
			}
		})
	}
}

func TestPageCacheSweep(t *testing.T) {
	t.Parallel()

	c, clock := newTestCache(10*time.Second, 10)
	c.Set(Key{Source: "s", Query: "old"}, "old")
	clock.Advance(11 * time.Second)
	c.Set(Key{Source: "s", Query: "new"}, "new")

	if n := c.Sweep(); n != 1 {
		t.Errorf("Sweep removed %d, want 1", n)
	}
	if c.Len() != 1 {
		t.Errorf("len = %d, want 1", c.Len())
	}
	if c.Stats().LastSweep.IsZero() {
		t.Error("LastSweep not recorded")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Error("Clear left entries")
	}
}

func TestPageCacheConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := New[int](time.Minute, 64)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := Key{Source: "s", Query: "q", Offset: (g*200 + i) % 100}
				c.Set(k, i)
				c.Get(k)
				if i%50 == 0 {
					c.InvalidateSource("s", "test")
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 64 {
		t.Errorf("len = %d exceeds capacity", c.Len())
	}
}

func TestKeyString(t *testing.T) {
	t.Parallel()

	if got := (Key{Source: "content", Query: "tacos", Offset: 40}).String(); got != "content:tacos@40" {
		t.Errorf("String() = %q", got)
	}
}
