package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/angas/powerprice-go/config"
	"github.com/angas/powerprice-go/prices"
	"github.com/angas/powerprice-go/publisher"
)

// NewPriceRefreshTask warms the cache for the configured default zones and,
// when a publisher is wired, pushes the latest price per zone to MQTT.
func NewPriceRefreshTask(logger *slog.Logger, fetcher *prices.Fetcher, pub *publisher.Publisher, cnfg *config.AppConfig) func() {
	return func() { runPriceRefreshTask(logger, fetcher, pub, cnfg) }
}

func runPriceRefreshTask(logger *slog.Logger, fetcher *prices.Fetcher, pub *publisher.Publisher, cnfg *config.AppConfig) {
	logger.Debug("running price refresh task...")
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	zoneIds := cnfg.Service.DefaultZones
	if len(zoneIds) == 0 {
		logger.Debug("no default zones configured, nothing to refresh")
		return
	}

	now := time.Now()
	start := now.AddDate(0, 0, -cnfg.Service.GetDefaultDaysBack())

	results, err := fetcher.Fetch(ctx, zoneIds, start, now, false)
	if err != nil {
		logger.Error("price refresh failed", slog.Any("error", err))
		return
	}

	refreshed := 0
	for id, res := range results {
		if res.Err != nil {
			logger.Warn("price refresh failed for zone",
				slog.String("zone", id),
				slog.String("kind", prices.Kind(res.Err)),
				slog.Any("error", res.Err))
			continue
		}
		refreshed++

		if pub != nil {
			if err := pub.PublishLatest(*res.Series); err != nil {
				logger.Warn("failed to publish latest price",
					slog.String("zone", id),
					slog.Any("error", err))
			}
		}
	}

	logger.Info("price refresh task done",
		slog.Int("zonesRefreshed", refreshed),
		slog.Int("zonesFailed", len(results)-refreshed))
}
