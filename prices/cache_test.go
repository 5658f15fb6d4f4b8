package prices

import (
	"testing"
	"time"

	"github.com/angas/powerprice-go/types"
)

func TestCacheKeyNormalizesToUtcDates(t *testing.T) {
	stockholm, err := time.LoadLocation("Europe/Stockholm")
	if err != nil {
		t.Fatal(err)
	}

	utc := NewCacheKey("10Y1001A1001A47J",
		time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC))
	local := NewCacheKey("10Y1001A1001A47J",
		time.Date(2024, time.January, 1, 1, 0, 0, 0, stockholm),
		time.Date(2024, time.January, 8, 1, 0, 0, 0, stockholm))

	if utc != local {
		t.Errorf("expected identical keys for the same instant, got %v and %v", utc, local)
	}
	if utc.Start != "2024-01-01" || utc.End != "2024-01-08" {
		t.Errorf("unexpected key dates: %+v", utc)
	}
}

func TestCacheExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)}
	c := NewCacheWithClock(15*time.Minute, clock.now)

	key := CacheKey{Code: "10Y1001A1001A47J", Start: "2024-01-01", End: "2024-01-08"}
	c.Put(key, types.PriceSeries{Zone: "SE4"})

	if s, ok := c.Get(key); !ok || s.Zone != "SE4" {
		t.Fatal("expected a fresh entry to be served")
	}

	clock.advance(14 * time.Minute)
	if _, ok := c.Get(key); !ok {
		t.Fatal("entry expired before its TTL")
	}

	clock.advance(time.Minute)
	if _, ok := c.Get(key); ok {
		t.Fatal("entry served at exactly TTL, expected a miss")
	}
	if c.Len() != 0 {
		t.Errorf("expected lazy expiry to delete the entry, len=%d", c.Len())
	}
}

func TestCacheMiss(t *testing.T) {
	c := NewCache(time.Minute)
	if _, ok := c.Get(CacheKey{Code: "nope"}); ok {
		t.Error("expected a miss for an unknown key")
	}
}
