package application

import (
	"fmt"
	"sync"
	"time"

	"github.com/example/campus-reservation/internal/booking"
)

// overviewCache stores recently computed weekly overviews to avoid repeated
// aggregation for identical calendar queries. Entries expire quickly, so a
// fresh booking becomes visible within the TTL at the latest.
type overviewCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]overviewCacheEntry
}

type overviewCacheEntry struct {
	overview  WeekOverview
	expiresAt time.Time
}

func newOverviewCache(ttl time.Duration, maxEntries int, now func() time.Time) *overviewCache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 64
	}
	if now == nil {
		now = time.Now
	}
	return &overviewCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]overviewCacheEntry),
	}
}

func (c *overviewCache) Get(key string) (WeekOverview, bool) {
	if c == nil {
		return WeekOverview{}, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expiresAt) {
		return WeekOverview{}, false
	}
	return entry.overview, true
}

func (c *overviewCache) Put(key string, overview WeekOverview) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for existing, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, existing)
		}
	}
	if len(c.entries) >= c.maxEntries {
		// Full even after pruning; drop the cache rather than grow it.
		c.entries = make(map[string]overviewCacheEntry)
	}
	c.entries[key] = overviewCacheEntry{
		overview:  overview,
		expiresAt: now.Add(c.ttl),
	}
}

func overviewCacheKey(base, today time.Time) string {
	return fmt.Sprintf("%s|%s", booking.FormatDate(base), booking.FormatDate(today))
}
