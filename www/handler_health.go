package www

import (
	"net/http"
	"time"

	"github.com/angas/powerprice-go/zones"
)

func NewHealthHandler(registry *zones.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJson(w, http.StatusOK, map[string]any{
			"status":          "healthy",
			"timestamp":       time.Now(),
			"available_zones": len(registry.All()),
		})
	}
}
