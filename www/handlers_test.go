package www

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angas/powerprice-go/config"
	"github.com/angas/powerprice-go/prices"
	"github.com/angas/powerprice-go/types"
	"github.com/angas/powerprice-go/zones"
)

type fakeProvider struct {
	prices []types.SpotPrice
	err    error
}

func (f *fakeProvider) DayAheadPrices(ctx context.Context, area string, start, end time.Time) ([]types.SpotPrice, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.prices, nil
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Entsoe: config.AppConfigEntsoe{Token: "test-token-123"},
		Zones: map[string]config.AppConfigZone{
			"SE4": {Name: "Sweden - South", Code: "10Y1001A1001A47J", Timezone: "Europe/Stockholm"},
			"DE":  {Name: "Germany", Code: "10Y1001A1001A82H", Timezone: "Europe/Berlin"},
		},
		Service: config.AppConfigService{DefaultZones: []string{"SE4"}},
	}
}

func testFetcher(cnfg *config.AppConfig, provider types.PriceProvider) *prices.Fetcher {
	registry := zones.NewRegistry(cnfg.ZoneList())
	return prices.NewFetcher(slog.Default(), registry, provider, nil, 365)
}

func defaultProvider() *fakeProvider {
	return &fakeProvider{prices: []types.SpotPrice{
		{Time: time.Now().Add(-2 * time.Hour).Truncate(time.Hour), Price: 28.34},
		{Time: time.Now().Add(-1 * time.Hour).Truncate(time.Hour), Price: 26.97},
	}}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
	}
	return body
}

func TestZonesHandler(t *testing.T) {
	cnfg := testConfig()
	registry := zones.NewRegistry(cnfg.ZoneList())
	handler := NewZonesHandler(slog.Default(), registry)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/zones", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if len(body) != 2 {
		t.Fatalf("expected 2 zones, got %d", len(body))
	}
	se4 := body["SE4"].(map[string]any)
	if se4["code"] != "10Y1001A1001A47J" {
		t.Errorf("unexpected SE4 payload: %v", se4)
	}
}

func TestPricesHandlerPartialFailure(t *testing.T) {
	cnfg := testConfig()
	handler := NewPricesHandler(slog.Default(), cnfg, testFetcher(cnfg, defaultProvider()))

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/prices?zones=SE4,BOGUS", nil))

	// One failing zone must not fail the request.
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)

	se4 := body["SE4"].(map[string]any)
	if se4["data_points"].(float64) != 2 {
		t.Errorf("expected 2 data points for SE4, got %v", se4["data_points"])
	}
	if se4["statistics"] == nil {
		t.Error("expected statistics by default")
	}

	bogus := body["BOGUS"].(map[string]any)
	if bogus["error_kind"] != prices.KindUnknownZone {
		t.Errorf("expected unknown zone envelope, got %v", bogus)
	}
	if bogus["zone"] != "BOGUS" {
		t.Errorf("expected the zone echoed back, got %v", bogus["zone"])
	}
}

func TestPricesHandlerNoZones(t *testing.T) {
	cnfg := testConfig()
	cnfg.Service.DefaultZones = nil
	handler := NewPricesHandler(slog.Default(), cnfg, testFetcher(cnfg, defaultProvider()))

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/prices", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestPricesHandlerInvalidRange(t *testing.T) {
	cnfg := testConfig()
	handler := NewPricesHandler(slog.Default(), cnfg, testFetcher(cnfg, defaultProvider()))

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/prices?zones=SE4&start_date=2024-02-01&end_date=2024-01-01", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for reversed range, got %d", rec.Code)
	}
}

func newTestServer(cnfg *config.AppConfig, provider types.PriceProvider) *Server {
	return StartServer(nil, testFetcher(cnfg, provider), cnfg, "test")
}

func TestZonePricesHandler(t *testing.T) {
	srv := newTestServer(testConfig(), defaultProvider())

	// The path segment is case-insensitive.
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/zones/se4/prices", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["zone"] != "SE4" {
		t.Errorf("expected zone SE4, got %v", body["zone"])
	}
	if body["data_points"].(float64) != 2 {
		t.Errorf("expected 2 data points, got %v", body["data_points"])
	}
}

func TestZonePricesHandlerUnknownZone(t *testing.T) {
	srv := newTestServer(testConfig(), defaultProvider())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/zones/SE9/prices", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body zoneErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.ErrorKind != prices.KindUnknownZone || body.Zone != "SE9" {
		t.Errorf("unexpected error envelope: %+v", body)
	}
}

func TestCurrentPricesHandler(t *testing.T) {
	cnfg := testConfig()
	handler := NewCurrentPricesHandler(slog.Default(), cnfg, testFetcher(cnfg, defaultProvider()))

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/prices/current", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	current := body["current_prices"].(map[string]any)
	se4 := current["SE4"].(map[string]any)
	// The newest point wins.
	if se4["price_eur_mwh"].(float64) != 26.97 {
		t.Errorf("expected the latest price, got %v", se4["price_eur_mwh"])
	}
}

func TestHealthHandler(t *testing.T) {
	cnfg := testConfig()
	handler := NewHealthHandler(zones.NewRegistry(cnfg.ZoneList()))

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "healthy" {
		t.Errorf("unexpected status %v", body["status"])
	}
	if body["available_zones"].(float64) != 2 {
		t.Errorf("expected 2 available zones, got %v", body["available_zones"])
	}
}

func TestBearerAuth(t *testing.T) {
	cnfg := testConfig()
	token := "secret-token"
	cnfg.Api.AuthToken = &token
	srv := newTestServer(cnfg, defaultProvider())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/zones", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/zones", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with a wrong token, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/zones", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with the right token, got %d", rec.Code)
	}

	// Health stays open.
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected /health to be open, got %d", rec.Code)
	}
}

func TestSplitZones(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"SE4", []string{"SE4"}},
		{" se4 , de ,", []string{"SE4", "DE"}},
	}
	for _, tt := range tests {
		got := splitZones(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("splitZones(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitZones(%q) = %v, want %v", tt.in, got, tt.want)
				break
			}
		}
	}
}
