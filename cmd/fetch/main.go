// One-shot price fetch: retrieves day-ahead prices for the requested zones,
// prints a summary and optionally exports the series to CSV or JSON files.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/angas/powerprice-go/config"
	"github.com/angas/powerprice-go/entsoe"
	"github.com/angas/powerprice-go/export"
	"github.com/angas/powerprice-go/prices"
	"github.com/angas/powerprice-go/types"
	"github.com/angas/powerprice-go/zones"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	zonesArg := flag.String("zones", "", "comma-separated zone identifiers (default: configured default zones)")
	startArg := flag.String("start", "", "start date (YYYY-MM-DD)")
	endArg := flag.String("end", "", "end date (YYYY-MM-DD)")
	daysArg := flag.Int("days", 0, "days back from now (default: configured lookback)")
	formatArg := flag.String("format", "", "export file format: csv or json (default: no export)")
	outArg := flag.String("out", "", "export directory (default: configured output dir)")
	flag.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{TimeFormat: time.RFC3339}))
	slog.SetDefault(logger)

	cnfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	zoneIds := cnfg.Service.DefaultZones
	if *zonesArg != "" {
		zoneIds = strings.Split(*zonesArg, ",")
		for i := range zoneIds {
			zoneIds[i] = strings.TrimSpace(zoneIds[i])
		}
	}

	daysBack := cnfg.Service.GetDefaultDaysBack()
	if *daysArg > 0 {
		daysBack = *daysArg
	}

	start, end, err := prices.DateRange(*startArg, *endArg, daysBack, time.Now())
	if err != nil {
		logger.Error("invalid date range", slog.Any("error", err))
		os.Exit(1)
	}

	registry := zones.NewRegistry(cnfg.ZoneList())
	client := entsoe.New(cnfg.Entsoe.GetBaseUrl(), cnfg.Entsoe.Token, cnfg.Entsoe.GetTimeout())
	fetcher := prices.NewFetcher(logger.With("module", "prices"), registry, client, nil, cnfg.Service.GetMaxDaysBack())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	results, err := fetcher.Fetch(ctx, zoneIds, start, end, cnfg.Output.GetIncludeStatistics())
	if err != nil {
		logger.Error("fetch failed", slog.Any("error", err))
		os.Exit(1)
	}

	failed := 0
	var fetched []types.PriceSeries
	for _, id := range zoneIds {
		res, ok := results[id]
		if !ok {
			continue
		}
		if res.Err != nil {
			failed++
			fmt.Printf("=== Zone: %s ===\nfailed: %s (%s)\n\n", id, res.Err, prices.Kind(res.Err))
			continue
		}

		s := *res.Series
		fetched = append(fetched, s)
		fmt.Printf("=== Zone: %s (%s) ===\n", s.Zone, s.ZoneName)
		fmt.Printf("data points: %d\n", len(s.Points))
		if len(s.Points) > 0 {
			fmt.Printf("range: %s to %s\n",
				s.Points[0].Timestamp.Format(time.RFC3339),
				s.Points[len(s.Points)-1].Timestamp.Format(time.RFC3339))
		}
		if s.Statistics.IsValid() {
			st := s.Statistics.Value()
			fmt.Printf("mean: %.2f  median: %.2f  min: %.2f  max: %.2f EUR/MWh\n",
				st.Mean, st.Median, st.Min, st.Max)
		}
		fmt.Println()
	}

	if *formatArg != "" && len(fetched) > 0 {
		dir := cnfg.Output.GetDir()
		if *outArg != "" {
			dir = *outArg
		}
		saved, err := export.Save(dir, *formatArg, time.Now(), fetched, cnfg.Output.GetIncludeTimeColumns())
		if err != nil {
			logger.Error("export failed", slog.Any("error", err))
			os.Exit(1)
		}
		for zone, path := range saved {
			fmt.Printf("saved %s -> %s\n", zone, path)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}
