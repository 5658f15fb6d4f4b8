package www

import (
	"net/http"
	"time"

	"github.com/angas/powerprice-go/prices"
	"github.com/angas/powerprice-go/slice"
	"github.com/angas/powerprice-go/types"
	"github.com/angas/powerprice-go/types/maybe"
)

type priceRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price_eur_mwh"`
	Zone      string    `json:"zone"`
	ZoneName  string    `json:"zone_name"`
	Date      string    `json:"date,omitempty"`
	Hour      *int      `json:"hour,omitempty"`
	DayOfWeek string    `json:"day_of_week,omitempty"`
}

type dateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type zonePriceResponse struct {
	Zone       string                        `json:"zone"`
	ZoneName   string                        `json:"zone_name"`
	DataPoints int                           `json:"data_points"`
	DateRange  *dateRange                    `json:"date_range,omitempty"`
	Statistics maybe.Maybe[types.Statistics] `json:"statistics"`
	Data       []priceRecord                 `json:"data"`
}

// zoneErrorResponse is the per-zone error envelope: one failing zone shows
// up as this instead of aborting the whole response.
type zoneErrorResponse struct {
	Zone      string `json:"zone"`
	ErrorKind string `json:"error_kind"`
	Message   string `json:"message"`
}

func newZoneError(zone string, err error) zoneErrorResponse {
	return zoneErrorResponse{
		Zone:      zone,
		ErrorKind: prices.Kind(err),
		Message:   err.Error(),
	}
}

func newZoneResponse(s types.PriceSeries, includeTimeColumns bool) zonePriceResponse {
	resp := zonePriceResponse{
		Zone:       s.Zone,
		ZoneName:   s.ZoneName,
		DataPoints: len(s.Points),
		Statistics: s.Statistics,
		Data: slice.Map(s.Points, func(p types.PricePoint) priceRecord {
			r := priceRecord{
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
		}),
	}
	if len(s.Points) > 0 {
		resp.DateRange = &dateRange{
			Start: s.Points[0].Timestamp,
			End:   s.Points[len(s.Points)-1].Timestamp,
		}
	}
	return resp
}

func statusForError(err error) int {
	switch prices.Kind(err) {
	case prices.KindUnknownZone:
		return http.StatusNotFound
	case prices.KindInvalidRange:
		return http.StatusBadRequest
	case prices.KindUpstreamTimeout:
		return http.StatusGatewayTimeout
	case prices.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
