package www

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

func intOrDefault(u *url.URL, key string, defaultValue int) int {
	if v := u.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func boolOrDefault(u *url.URL, key string, defaultValue bool) bool {
	if v := u.Query().Get(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

// splitZones parses a comma-separated zone list, trimming and upper-casing
// each entry the way callers tend to type them.
func splitZones(raw string) []string {
	parts := strings.Split(raw, ",")
	zones := make([]string, 0, len(parts))
	for _, p := range parts {
		if z := strings.ToUpper(strings.TrimSpace(p)); z != "" {
			zones = append(zones, z)
		}
	}
	return zones
}

func writeJson(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJsonError(w http.ResponseWriter, status int, message string) {
	writeJson(w, status, map[string]string{"error": message})
}
