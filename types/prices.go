package types

import (
	"context"
	"time"

	"github.com/angas/powerprice-go/types/maybe"
)

// SpotPrice is one raw day-ahead observation as delivered by an upstream
// market-data API, before any zone localization.
type SpotPrice struct {
	Time  time.Time // start of the delivery period, UTC
	Price float64   // EUR per MWh
}

type PriceProvider interface {
	DayAheadPrices(ctx context.Context, area string, start, end time.Time) ([]SpotPrice, error)
}

// PricePoint is a normalized observation. Timestamp carries the bidding
// zone's own timezone, and the derived calendar fields are computed from
// that local time, never from UTC.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price_eur_mwh"`
	Zone      string    `json:"zone"`
	ZoneName  string    `json:"zone_name"`
	Date      string    `json:"date"`
	Hour      int       `json:"hour"`
	DayOfWeek string    `json:"day_of_week"`
}

type PriceSeries struct {
	Zone       string
	ZoneName   string
	Points     []PricePoint // ascending by timestamp, no duplicates
	Statistics maybe.Maybe[Statistics]
}

// Latest returns the most recent point of the series.
func (s PriceSeries) Latest() maybe.Maybe[PricePoint] {
	if len(s.Points) == 0 {
		return maybe.None[PricePoint]()
	}
	return maybe.Some(s.Points[len(s.Points)-1])
}

// Statistics describes the price values of a series. StdDev uses the
// sample (n-1) formula and is absent when the series holds a single point.
type Statistics struct {
	Count  int                  `json:"count"`
	Mean   float64              `json:"mean"`
	Median float64              `json:"median"`
	StdDev maybe.Maybe[float64] `json:"std"`
	Min    float64              `json:"min"`
	Max    float64              `json:"max"`
	Q25    float64              `json:"q25"`
	Q75    float64              `json:"q75"`
}
