package www

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/angas/powerprice-go/config"
	"github.com/angas/powerprice-go/prices"
)

func requestRange(u *url.URL, cnfg *config.AppConfig) (time.Time, time.Time, error) {
	daysBack := intOrDefault(u, "days_back", cnfg.Service.GetDefaultDaysBack())
	return prices.DateRange(
		u.Query().Get("start_date"),
		u.Query().Get("end_date"),
		daysBack,
		time.Now())
}

// NewPricesHandler serves prices for several zones at once. Zone-scoped
// failures land in the zone's result slot, the call itself still succeeds.
func NewPricesHandler(logger *slog.Logger, cnfg *config.AppConfig, fetcher *prices.Fetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		zoneIds := splitZones(r.URL.Query().Get("zones"))
		if len(zoneIds) == 0 {
			zoneIds = cnfg.Service.DefaultZones
		}
		if len(zoneIds) == 0 {
			writeJsonError(w, http.StatusBadRequest, "no zones requested and no defaults configured")
			return
		}

		start, end, err := requestRange(r.URL, cnfg)
		if err != nil {
			writeJsonError(w, http.StatusBadRequest, err.Error())
			return
		}

		includeStats := boolOrDefault(r.URL, "include_statistics", cnfg.Output.GetIncludeStatistics())
		results, err := fetcher.Fetch(r.Context(), zoneIds, start, end, includeStats)
		if err != nil {
			logger.Warn("rejected price request", slog.Any("error", err))
			writeJsonError(w, statusForError(err), err.Error())
			return
		}

		includeTime := cnfg.Output.GetIncludeTimeColumns()
		resp := make(map[string]any, len(results))
		for id, res := range results {
			if res.Err != nil {
				resp[id] = newZoneError(id, res.Err)
				continue
			}
			resp[id] = newZoneResponse(*res.Series, includeTime)
		}
		writeJson(w, http.StatusOK, resp)
	}
}
