package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/angas/powerprice-go/slice"
	"github.com/angas/powerprice-go/types"
)

// Save writes one file per series into dir, named
// <zone>_prices_<timestamp>.<format>. Format is "csv" or "json".
// Returns the written path per zone; empty series are skipped.
func Save(dir, format string, when time.Time, series []types.PriceSeries, includeTimeColumns bool) (map[string]string, error) {
	if format != "csv" && format != "json" {
		return nil, fmt.Errorf("unsupported file format: %s", format)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	stamp := when.Format("20060102_150405")
	saved := make(map[string]string)
	for _, s := range series {
		if len(s.Points) == 0 {
			continue
		}

		path := filepath.Join(dir, fmt.Sprintf("%s_prices_%s.%s", s.Zone, stamp, format))
		var err error
		if format == "csv" {
			err = writeCsv(path, s, includeTimeColumns)
		} else {
			err = writeJson(path, s, includeTimeColumns)
		}
		if err != nil {
			return nil, fmt.Errorf("saving zone %s: %w", s.Zone, err)
		}
		saved[s.Zone] = path
	}

	return saved, nil
}

func writeCsv(path string, series types.PriceSeries, includeTimeColumns bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"timestamp", "price_eur_mwh", "zone", "zone_name"}
	if includeTimeColumns {
		header = append(header, "date", "hour", "day_of_week")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, p := range series.Points {
		row := []string{
			p.Timestamp.Format(time.RFC3339),
			strconv.FormatFloat(p.Price, 'f', -1, 64),
			p.Zone,
			p.ZoneName,
		}
		if includeTimeColumns {
			row = append(row, p.Date, strconv.Itoa(p.Hour), p.DayOfWeek)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

type jsonRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price_eur_mwh"`
	Zone      string    `json:"zone"`
	ZoneName  string    `json:"zone_name"`
	Date      string    `json:"date,omitempty"`
	Hour      *int      `json:"hour,omitempty"`
	DayOfWeek string    `json:"day_of_week,omitempty"`
}

func writeJson(path string, series types.PriceSeries, includeTimeColumns bool) error {
	records := slice.Map(series.Points, func(p types.PricePoint) jsonRecord {
		r := jsonRecord{
			Timestamp: p.Timestamp,
			Price:     p.Price,
			Zone:      p.Zone,
			ZoneName:  p.ZoneName,
		}
		if includeTimeColumns {
			hour := p.Hour
			r.Date = p.Date
			r.Hour = &hour
			r.DayOfWeek = p.DayOfWeek
		}
		return r
	})

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
