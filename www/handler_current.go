package www

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/angas/powerprice-go/config"
	"github.com/angas/powerprice-go/prices"
)

type currentPrice struct {
	Zone      string    `json:"zone"`
	ZoneName  string    `json:"zone_name"`
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price_eur_mwh"`
	Hour      int       `json:"hour"`
	Date      string    `json:"date"`
}

// NewCurrentPricesHandler returns the most recent available point per zone,
// looking one day back.
func NewCurrentPricesHandler(logger *slog.Logger, cnfg *config.AppConfig, fetcher *prices.Fetcher) http.HandlerFunc {
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

		now := time.Now()
		results, err := fetcher.Fetch(r.Context(), zoneIds, now.AddDate(0, 0, -1), now, false)
		if err != nil {
			writeJsonError(w, statusForError(err), err.Error())
			return
		}

		current := make(map[string]any, len(results))
		for id, res := range results {
			if res.Err != nil {
				current[id] = newZoneError(id, res.Err)
				continue
			}
			latest := res.Series.Latest()
			if !latest.IsValid() {
				current[id] = zoneErrorResponse{
					Zone:      id,
					ErrorKind: prices.KindUpstream,
					Message:   "no current data available",
				}
				continue
			}
			pt := latest.Value()
			current[id] = currentPrice{
				Zone:      id,
				ZoneName:  res.Series.ZoneName,
				Timestamp: pt.Timestamp,
				Price:     pt.Price,
				Hour:      pt.Hour,
				Date:      pt.Date,
			}
		}

		writeJson(w, http.StatusOK, map[string]any{
			"timestamp":      now,
			"current_prices": current,
		})
	}
}
