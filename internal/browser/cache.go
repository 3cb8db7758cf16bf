package browser

import (
	"sync"
	"time"

	"github.com/alryaz/go-music-browser/internal/metrics"
)

// cacheEntry wraps a materialized node with its expansion metadata. Entries
// are replaced whole, never patched, so readers always observe a complete
// node.
type cacheEntry struct {
	node       *Node
	depth      int
	expandedAt time.Time
}

// Cache is the fingerprinted, time-bounded browse node cache.
//
// Garbage collection is amortized: it runs only when a resolve call asks for
// it, never on a background timer.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[Fingerprint]cacheEntry
}

// NewCache creates a Cache whose entries expire after ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[Fingerprint]cacheEntry),
	}
}

// Get returns a live cache entry with at least minDepth materialized levels.
func (c *Cache) Get(fingerprint Fingerprint, minDepth int) (*Node, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[fingerprint]
	if !ok || entry.depth < minDepth || time.Since(entry.expandedAt) > c.ttl {
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}
	metrics.CacheHitsTotal.Inc()
	return entry.node, true
}

// Put stores a freshly materialized node, replacing any previous entry for
// the same fingerprint. Last writer wins.
func (c *Cache) Put(fingerprint Fingerprint, node *Node, depth int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fingerprint] = cacheEntry{node: node, depth: depth, expandedAt: time.Now()}
	metrics.CacheEntries.Set(float64(len(c.entries)))
}

// GC evicts all expired entries and returns the number removed.
func (c *Cache) GC() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for fingerprint, entry := range c.entries {
		if time.Since(entry.expandedAt) > c.ttl {
			delete(c.entries, fingerprint)
			removed++
		}
	}
	metrics.CacheEvictionsTotal.Add(float64(removed))
	metrics.CacheEntries.Set(float64(len(c.entries)))
	return removed
}

// Clear drops every entry. Used on session teardown.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Fingerprint]cacheEntry)
	metrics.CacheEntries.Set(0)
}

// Len returns the number of live entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
