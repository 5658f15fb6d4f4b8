package prices

import (
	"sync"
	"time"

	"github.com/angas/powerprice-go/types"
)

const dateLayout = "2006-01-02"

// CacheKey identifies one upstream retrieval: an area code and a date range.
type CacheKey struct {
	Code  string
	Start string
	End   string
}

func NewCacheKey(code string, start, end time.Time) CacheKey {
	return CacheKey{
		Code:  code,
		Start: start.UTC().Format(dateLayout),
		End:   end.UTC().Format(dateLayout),
	}
}

type cacheEntry struct {
	series    types.PriceSeries
	expiresAt time.Time
}

// Cache is a TTL-bounded store for fetched price series. Expiry is lazy:
// a stale entry is dropped when it is next looked up, there is no sweeper
// and no capacity bound. The clock is injectable for deterministic tests.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[CacheKey]cacheEntry
}

func NewCache(ttl time.Duration) *Cache {
	return NewCacheWithClock(ttl, time.Now)
}

func NewCacheWithClock(ttl time.Duration, now func() time.Time) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[CacheKey]cacheEntry),
	}
}

func (c *Cache) Get(key CacheKey) (types.PriceSeries, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return types.PriceSeries{}, false
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return types.PriceSeries{}, false
	}
	return entry.series, true
}

func (c *Cache) Put(key CacheKey, series types.PriceSeries) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{series: series, expiresAt: c.now().Add(c.ttl)}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
