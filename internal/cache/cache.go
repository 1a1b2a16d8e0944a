// Package cache provides the time-bounded result cache shared by the
// snapshot and analyze modules. One Store bundles the two named slots
// (snapshot, analysis) keyed by subnet id; entries expire a fixed TTL after
// insertion and writes are last-writer-wins.
package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/subnetscope/subnetscope/internal/metrics"
	"github.com/subnetscope/subnetscope/pkg/models"
)

// Cache is a TTL map from subnet id to a value of type T.
type Cache[T any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	slot    string
	entries map[int]entry[T]
}

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// newCache creates a cache with the given TTL and time source. slot labels
// the cache in metrics.
func newCache[T any](slot string, ttl time.Duration, now func() time.Time) *Cache[T] {
	return &Cache[T]{
		ttl:     ttl,
		now:     now,
		slot:    slot,
		entries: make(map[int]entry[T]),
	}
}

// Get returns the cached value for key, or the zero value and false when
// the key is absent or its TTL has elapsed.
func (c *Cache[T]) Get(key int) (T, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !c.now().Before(e.expiresAt) {
		metrics.CacheOps.WithLabelValues(c.slot, "miss").Inc()
		var zero T
		return zero, false
	}
	metrics.CacheOps.WithLabelValues(c.slot, "hit").Inc()
	return e.value, true
}

// Set stores value under key, replacing any existing entry and resetting
// its TTL.
func (c *Cache[T]) Set(key int, value T) {
	c.mu.Lock()
	c.entries[key] = entry[T]{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	metrics.CacheOps.WithLabelValues(c.slot, "set").Inc()
}

// Clear evicts every entry unconditionally.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	c.entries = make(map[int]entry[T])
	c.mu.Unlock()
}

// Keys returns the unexpired keys in ascending order.
func (c *Cache[T]) Keys() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	keys := make([]int, 0, len(c.entries))
	for k, e := range c.entries {
		if now.Before(e.expiresAt) {
			keys = append(keys, k)
		}
	}
	sort.Ints(keys)
	return keys
}

// Len returns the number of unexpired entries.
func (c *Cache[T]) Len() int {
	return len(c.Keys())
}

// Store bundles the snapshot and analysis caches. The two slots share one
// TTL but expire independently; an analysis entry never implies a live
// snapshot entry.
type Store struct {
	Snapshots *Cache[*models.Snapshot]
	Analyses  *Cache[*models.AnalysisReport]
}

// NewStore creates a Store using the wall clock.
func NewStore(ttl time.Duration) *Store {
	return NewStoreWithClock(ttl, time.Now)
}

// NewStoreWithClock creates a Store with an injectable time source.
func NewStoreWithClock(ttl time.Duration, now func() time.Time) *Store {
	return &Store{
		Snapshots: newCache[*models.Snapshot]("snapshot", ttl, now),
		Analyses:  newCache[*models.AnalysisReport]("analysis", ttl, now),
	}
}

// ClearAll evicts every entry from both slots.
func (s *Store) ClearAll() {
	s.Snapshots.Clear()
	s.Analyses.Clear()
}

// KeyCount returns the total number of live entries across both slots.
func (s *Store) KeyCount() int {
	return s.Snapshots.Len() + s.Analyses.Len()
}
