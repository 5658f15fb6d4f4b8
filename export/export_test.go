package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/angas/powerprice-go/types"
)

func testSeries() types.PriceSeries {
	return types.PriceSeries{
		Zone:     "SE4",
		ZoneName: "Sweden - South",
		Points: []types.PricePoint{
			{
				Timestamp: time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC),
				Price:     28.34,
				Zone:      "SE4",
				ZoneName:  "Sweden - South",
				Date:      "2024-01-02",
				Hour:      1,
				DayOfWeek: "Tuesday",
			},
			{
				Timestamp: time.Date(2024, time.January, 2, 1, 0, 0, 0, time.UTC),
				Price:     26.97,
				Zone:      "SE4",
				ZoneName:  "Sweden - South",
				Date:      "2024-01-02",
				Hour:      2,
				DayOfWeek: "Tuesday",
			},
		},
	}
}

func TestSaveCsv(t *testing.T) {
	dir := t.TempDir()
	when := time.Date(2024, time.January, 2, 13, 30, 45, 0, time.UTC)

	saved, err := Save(dir, "csv", when, []types.PriceSeries{testSeries()}, true)
	if err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}

	path, ok := saved["SE4"]
	if !ok {
		t.Fatal("expected a file for SE4")
	}
	if want := filepath.Join(dir, "SE4_prices_20240102_133045.csv"); path != want {
		t.Errorf("unexpected file name %s, want %s", path, want)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][4] != "date" || rows[0][6] != "day_of_week" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][1] != "28.34" || rows[1][5] != "1" {
		t.Errorf("unexpected first row %v", rows[1])
	}
}

func TestSaveCsvWithoutTimeColumns(t *testing.T) {
	dir := t.TempDir()
	saved, err := Save(dir, "csv", time.Now(), []types.PriceSeries{testSeries()}, false)
	if err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}

	f, err := os.Open(saved["SE4"])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows[0]) != 4 {
		t.Errorf("expected 4 columns, got %v", rows[0])
	}
}

func TestSaveJson(t *testing.T) {
	dir := t.TempDir()
	saved, err := Save(dir, "json", time.Now(), []types.PriceSeries{testSeries()}, true)
	if err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}

	data, err := os.ReadFile(saved["SE4"])
	if err != nil {
		t.Fatal(err)
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("exported JSON does not parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0]["price_eur_mwh"] != 28.34 {
		t.Errorf("unexpected price %v", records[0]["price_eur_mwh"])
	}
	if records[0]["day_of_week"] != "Tuesday" {
		t.Errorf("unexpected day_of_week %v", records[0]["day_of_week"])
	}
}

func TestSaveSkipsEmptySeries(t *testing.T) {
	dir := t.TempDir()
	saved, err := Save(dir, "json", time.Now(), []types.PriceSeries{{Zone: "SE4"}}, true)
	if err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}
	if len(saved) != 0 {
		t.Errorf("expected no files for an empty series, got %v", saved)
	}
}

func TestSaveRejectsUnknownFormat(t *testing.T) {
	if _, err := Save(t.TempDir(), "xml", time.Now(), nil, true); err == nil {
		t.Error("expected an error for an unsupported format")
	}
}
