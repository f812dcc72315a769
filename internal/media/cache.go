// Package media provides the memoizing fetch cache shared by narration
// audio and generated visuals.
package media

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/hammamikhairi/celestialwok/internal/logger"
	"github.com/hammamikhairi/celestialwok/internal/metrics"
)

// NarrationText keys the narration audio cache. Keys are exact text
// matches; no normalization is applied.
type NarrationText string

// VisualPrompt keys the visual cache. It is a distinct type from
// NarrationText so the two keyspaces cannot be mixed up.
type VisualPrompt string

// FetchFunc resolves a value for a key that is not cached yet.
type FetchFunc[K ~string, V any] func(ctx context.Context, key K) (V, error)

// Cache is a session-scoped memoizing cache. Entries are never evicted
// and never expire; failed fetches are not stored. Concurrent callers
// asking for the same missing key share a single fetch. Safe for
// concurrent use.
type Cache[K ~string, V any] struct {
	name  string
	log   *logger.Logger
	group singleflight.Group

	mu      sync.RWMutex
	entries map[K]V
	hits    int64
	misses  int64
}

// New creates an empty cache. The name labels log lines and metrics.
func New[K ~string, V any](name string, log *logger.Logger) *Cache[K, V] {
	return &Cache[K, V]{
		name:    name,
		log:     log,
		entries: make(map[K]V),
	}
}

// GetOrFetch returns the cached value for key, or runs fetch exactly once
// for all concurrent callers of that key and stores a successful result.
// The shared fetch runs detached from any single caller's cancellation; a
// caller whose ctx ends stops waiting with ctx.Err() while the others keep
// theirs.
func (c *Cache[K, V]) GetOrFetch(ctx context.Context, key K, fetch FetchFunc[K, V]) (V, error) {
	var zero V
	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(string(key), func() (any, error) {
		// A previous flight may have stored the key after our lookup.
		if v, ok := c.Peek(key); ok {
			return v, nil
		}
		v, err := fetch(fetchCtx, key)
		if err != nil {
			return nil, err
		}
		c.store(key, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		c.log.Debug("%s cache: gave up waiting for %q: %v", c.name, truncate(string(key), 40), ctx.Err())
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			c.log.Debug("%s cache: fetch failed for %q: %v", c.name, truncate(string(key), 40), res.Err)
			return zero, res.Err
		}
		if res.Shared {
			c.log.Debug("%s cache: shared in-flight fetch for %q", c.name, truncate(string(key), 40))
		}
		v, _ := res.Val.(V)
		return v, nil
	}
}

// Peek returns the cached value without fetching or touching the stats.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns hit and miss counts.
func (c *Cache[K, V]) Stats() (hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

func (c *Cache[K, V]) lookup(key K) (V, bool) {
	c.mu.Lock()
	v, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()

	metrics.RecordCacheLookup(c.name, ok)
	if ok {
		c.log.Debug("%s cache hit: %s", c.name, truncate(string(key), 40))
	}
	return v, ok
}

func (c *Cache[K, V]) store(key K, v V) {
	c.mu.Lock()
	c.entries[key] = v
	size := len(c.entries)
	c.mu.Unlock()

	c.log.Debug("%s cache store: %s (%d entries)", c.name, truncate(string(key), 40), size)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
