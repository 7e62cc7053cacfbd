package licenses

import (
	"sync"
	"time"
)

// DefaultTTL is the aggregation cache window. Matches the five minute window
// the dashboard has always used.
const DefaultTTL = 5 * time.Minute

type cacheEntry struct {
	group     *Group
	writtenAt time.Time
}

// GroupCache is a per-owner TTL cache of aggregated license groups. Entries
// are replaced wholesale on Set and a stale entry is a miss; losing the cache
// never loses data, it only forces a refetch. The aggregator owns the cache;
// the mutation coordinator may only invalidate it.
type GroupCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewGroupCache creates a cache with the given TTL.
func NewGroupCache(ttl time.Duration) *GroupCache {
	return &GroupCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached group for an owner, treating entries older than the
// TTL as absent.
func (c *GroupCache) Get(ownerID string) (*Group, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[ownerID]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.writtenAt) >= c.ttl {
		return nil, false
	}
	return entry.group, true
}

// Set stores a freshly aggregated group for an owner.
func (c *GroupCache) Set(ownerID string, group *Group) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[ownerID] = cacheEntry{group: group, writtenAt: c.now()}
}

// Invalidate drops the owner's entry. Called after every successful mutation.
func (c *GroupCache) Invalidate(ownerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, ownerID)
}
