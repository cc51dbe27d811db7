package observations

import (
	"sync"
	"time"
)

// Cache is a concurrency-safe in-memory cache of assembled observation
// snapshots, keyed by (location, date, pollen source). It exists so that a
// prefetched or recently displayed observation does not trigger another
// round of upstream calls; the clients themselves stay uncached.
type Cache struct {
	mu sync.RWMutex

	data map[string]Snapshot

	// retention configuration
	maxEntries int           // max number of cached snapshots
	maxAge     time.Duration // optional max age for snapshots
}

// NewCache creates a new Cache with optional limits.
// If maxEntries is <= 0, it is treated as unlimited.
func NewCache(maxEntries int, maxAge time.Duration) *Cache {
	return &Cache{
		data:       make(map[string]Snapshot),
		maxEntries: maxEntries,
		maxAge:     maxAge,
	}
}

// Save stores a snapshot and enforces retention.
func (c *Cache) Save(snapshot Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[snapshot.key()] = snapshot

	// Enforce retention by age.
	if c.maxAge > 0 {
		cutoff := time.Now().Add(-c.maxAge)
		for k, snap := range c.data {
			if snap.FetchedAt.Before(cutoff) {
				delete(c.data, k)
			}
		}
	}

	// Enforce retention by count: evict oldest first.
	for c.maxEntries > 0 && len(c.data) > c.maxEntries {
		var oldestKey string
		var oldest time.Time
		for k, snap := range c.data {
			if oldestKey == "" || snap.FetchedAt.Before(oldest) {
				oldestKey = k
				oldest = snap.FetchedAt
			}
		}
		delete(c.data, oldestKey)
	}
}

// Get returns the cached snapshot for the key fields, if present and not
// expired.
func (c *Cache) Get(loc locationKeyer, date time.Time, source string) (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap, ok := c.data[snapshotKey(loc, date, source)]
	if !ok {
		return Snapshot{}, false
	}
	if c.maxAge > 0 && time.Since(snap.FetchedAt) > c.maxAge {
		return Snapshot{}, false
	}
	return snap, true
}

// Len returns the number of cached snapshots.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
