package www

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/angas/powerprice-go/config"
	"github.com/angas/powerprice-go/prices"
)

// NewZonePricesHandler serves prices for a single zone from the path, with
// an HTTP status matched to the failure kind. An empty range is a normal
// 200 with no data points.
func NewZonePricesHandler(logger *slog.Logger, cnfg *config.AppConfig, fetcher *prices.Fetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		zoneId := strings.ToUpper(strings.TrimSpace(r.PathValue("zone")))
		if zoneId == "" {
			writeJsonError(w, http.StatusBadRequest, "missing zone")
			return
		}

		start, end, err := requestRange(r.URL, cnfg)
		if err != nil {
			writeJsonError(w, http.StatusBadRequest, err.Error())
			return
		}

		includeStats := boolOrDefault(r.URL, "include_statistics", cnfg.Output.GetIncludeStatistics())
		results, err := fetcher.Fetch(r.Context(), []string{zoneId}, start, end, includeStats)
		if err != nil {
			writeJsonError(w, statusForError(err), err.Error())
			return
		}

		res := results[zoneId]
		if res.Err != nil {
			logger.Warn("zone price request failed",
				slog.String("zone", zoneId),
				slog.String("kind", prices.Kind(res.Err)),
				slog.Any("error", res.Err))
			writeJson(w, statusForError(res.Err), newZoneError(zoneId, res.Err))
			return
		}

		writeJson(w, http.StatusOK, newZoneResponse(*res.Series, cnfg.Output.GetIncludeTimeColumns()))
	}
}
