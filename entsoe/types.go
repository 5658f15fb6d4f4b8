package entsoe

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// The Transparency Platform answers price queries (documentType A44) with a
// Publication_MarketDocument, or an Acknowledgement_MarketDocument when no
// data matches the query.

type publicationDocument struct {
	XMLName    xml.Name     `xml:"Publication_MarketDocument"`
	TimeSeries []timeSeries `xml:"TimeSeries"`
}

type timeSeries struct {
	Currency string   `xml:"currency_Unit.name"`
	Unit     string   `xml:"price_Measure_Unit.name"`
	Periods  []period `xml:"Period"`
}

type period struct {
	TimeInterval timeInterval `xml:"timeInterval"`
	Resolution   string       `xml:"resolution"`
	Points       []point      `xml:"Point"`
}

type timeInterval struct {
	Start string `xml:"start"`
	End   string `xml:"end"`
}

type point struct {
	Position int     `xml:"position"`
	Price    float64 `xml:"price.amount"`
}

type acknowledgementDocument struct {
	XMLName xml.Name `xml:"Acknowledgement_MarketDocument"`
	Reasons []reason `xml:"Reason"`
}

type reason struct {
	Code string `xml:"code"`
	Text string `xml:"text"`
}

// Interval boundaries come as "2006-01-02T15:04Z", occasionally with seconds.
func parseDocumentTime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04Z07:00", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable document time %q", s)
}

var resolutionRe = regexp.MustCompile(`^PT(\d+)M$`)

func parseResolution(s string) (time.Duration, error) {
	m := resolutionRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("unsupported resolution %q", s)
	}
	minutes, err := strconv.Atoi(m[1])
	if err != nil || minutes == 0 {
		return 0, fmt.Errorf("unsupported resolution %q", s)
	}
	return time.Duration(minutes) * time.Minute, nil
}
