package prices

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/angas/powerprice-go/calc"
	"github.com/angas/powerprice-go/types"
	"github.com/angas/powerprice-go/types/maybe"
	"github.com/angas/powerprice-go/zones"
)

// Fetcher retrieves day-ahead prices per bidding zone, normalizes them to
// the zone's local time, and keeps successful results in a TTL cache.
type Fetcher struct {
	logger   *slog.Logger
	registry *zones.Registry
	provider types.PriceProvider
	cache    *Cache // nil when caching is disabled
	maxDays  int
}

func NewFetcher(logger *slog.Logger, registry *zones.Registry, provider types.PriceProvider, cache *Cache, maxDays int) *Fetcher {
	return &Fetcher{
		logger:   logger,
		registry: registry,
		provider: provider,
		cache:    cache,
		maxDays:  maxDays,
	}
}

func (f *Fetcher) Registry() *zones.Registry {
	return f.registry
}

// ZoneResult holds either a fetched series or the error that stopped this
// zone. One failing zone never fails its siblings.
type ZoneResult struct {
	Series *types.PriceSeries
	Err    error
}

// Fetch retrieves prices for the given zone identifiers over [start, end].
// The returned error is non-nil only for an invalid range; everything
// zone-scoped is reported in the result map.
func (f *Fetcher) Fetch(ctx context.Context, identifiers []string, start, end time.Time, includeStats bool) (map[string]ZoneResult, error) {
	if err := f.validateRange(start, end); err != nil {
		return nil, err
	}

	results := make(map[string]ZoneResult, len(identifiers))
	for _, id := range identifiers {
		if _, done := results[id]; done {
			continue
		}

		zone, err := f.registry.Resolve(id)
		if err != nil {
			f.logger.Warn("zone not in catalog", slog.String("zone", id))
			results[id] = ZoneResult{Err: err}
			continue
		}

		series, err := f.fetchZone(ctx, zone, start, end)
		if err != nil {
			f.logger.Error("failed to fetch prices",
				slog.String("zone", id),
				slog.Any("error", err))
			results[id] = ZoneResult{Err: err}
			continue
		}

		if includeStats && len(series.Points) > 0 {
			series.Statistics = maybe.Some(statistics(series.Points))
		}
		results[id] = ZoneResult{Series: &series}
	}

	return results, nil
}

func (f *Fetcher) validateRange(start, end time.Time) error {
	if end.Before(start) {
		return &InvalidRangeError{Start: start, End: end, Reason: "start is after end"}
	}
	if f.maxDays > 0 && end.Sub(start) > time.Duration(f.maxDays)*24*time.Hour {
		return &InvalidRangeError{Start: start, End: end, Reason: "range exceeds maximum lookback"}
	}
	return nil
}

func (f *Fetcher) fetchZone(ctx context.Context, zone zones.Zone, start, end time.Time) (types.PriceSeries, error) {
	key := NewCacheKey(zone.Code, start, end)
	if f.cache != nil {
		if series, ok := f.cache.Get(key); ok {
			f.logger.Debug("cache hit", slog.String("zone", zone.Identifier))
			return series, nil
		}
	}

	loc, err := zone.Location()
	if err != nil {
		return types.PriceSeries{}, err
	}

	raw, err := f.provider.DayAheadPrices(ctx, zone.Code, start, end)
	if err != nil {
		// Never cached: the next call must retry.
		return types.PriceSeries{}, err
	}

	series := normalize(zone, loc, raw)
	f.logger.Debug("fetched prices",
		slog.String("zone", zone.Identifier),
		slog.Int("points", len(series.Points)))

	if f.cache != nil {
		f.cache.Put(key, series)
	}
	return series, nil
}

// normalize localizes raw observations to the zone's timezone, sorts them
// ascending and drops duplicate timestamps keeping the first occurrence.
// The calendar fields are derived from the zone-local instant so that a
// point near midnight lands on the right local date.
func normalize(zone zones.Zone, loc *time.Location, raw []types.SpotPrice) types.PriceSeries {
	sorted := slices.Clone(raw)
	slices.SortStableFunc(sorted, func(a, b types.SpotPrice) int {
		return a.Time.Compare(b.Time)
	})

	points := make([]types.PricePoint, 0, len(sorted))
	var prev time.Time
	for _, sp := range sorted {
		if len(points) > 0 && sp.Time.Equal(prev) {
			continue
		}
		prev = sp.Time

		local := sp.Time.In(loc)
		points = append(points, types.PricePoint{
			Timestamp: local,
			Price:     sp.Price,
			Zone:      zone.Identifier,
			ZoneName:  zone.Name,
			Date:      local.Format(dateLayout),
			Hour:      local.Hour(),
			DayOfWeek: local.Weekday().String(),
		})
	}

	return types.PriceSeries{
		Zone:     zone.Identifier,
		ZoneName: zone.Name,
		Points:   points,
	}
}

func statistics(points []types.PricePoint) types.Statistics {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Price
	}

	min, max := calc.MinMax(values)
	stats := types.Statistics{
		Count:  len(values),
		Mean:   calc.Mean(values),
		Median: calc.Median(values),
		Min:    min,
		Max:    max,
		Q25:    calc.Quantile(values, 0.25),
		Q75:    calc.Quantile(values, 0.75),
	}
	if sd, ok := calc.SampleStdDev(values); ok {
		stats.StdDev = maybe.Some(sd)
	}
	return stats
}

// DateRange resolves a requested range from explicit "2006-01-02" dates
// or a days-back window ending now.
func DateRange(startStr, endStr string, daysBack int, now time.Time) (time.Time, time.Time, error) {
	end := now
	if endStr != "" {
		t, err := time.Parse(dateLayout, endStr)
		if err != nil {
			return time.Time{}, time.Time{}, &InvalidRangeError{Reason: "unparsable end date " + endStr}
		}
		end = t
	}

	start := end.AddDate(0, 0, -daysBack)
	if startStr != "" {
		t, err := time.Parse(dateLayout, startStr)
		if err != nil {
			return time.Time{}, time.Time{}, &InvalidRangeError{Reason: "unparsable start date " + startStr}
		}
		start = t
	}

	return start, end, nil
}
