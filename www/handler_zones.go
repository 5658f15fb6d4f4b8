package www

import (
	"log/slog"
	"net/http"

	"github.com/angas/powerprice-go/zones"
)

type zoneInfo struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Timezone    string `json:"timezone"`
	Description string `json:"description"`
}

func NewZonesHandler(logger *slog.Logger, registry *zones.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		catalog := registry.All()
		resp := make(map[string]zoneInfo, len(catalog))
		for id, z := range catalog {
			resp[id] = zoneInfo{
				Name:        z.Name,
				Code:        z.Code,
				Timezone:    z.Timezone,
				Description: z.Description,
			}
		}
		writeJson(w, http.StatusOK, resp)
	}
}
