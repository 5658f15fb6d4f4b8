package entsoe

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angas/powerprice-go/types"
)

const DefaultBaseUrl = "https://web-api.tp.entsoe.eu/api"

const periodLayout = "200601021504"

// UpstreamError is returned when the API answers with a failure status or
// a payload that cannot be parsed.
type UpstreamError struct {
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("entsoe: unexpected status %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("entsoe: %s", e.Detail)
}

// TimeoutError is returned when a call exceeds the configured timeout.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("entsoe: request timed out after %s", e.Timeout)
}

// Client fetches day-ahead prices from the ENTSO-E Transparency Platform.
type Client struct {
	logger     *slog.Logger
	baseUrl    string
	token      string
	timeout    time.Duration
	httpClient *http.Client
}

func New(baseUrl, token string, timeout time.Duration) *Client {
	return &Client{
		logger:     slog.Default().With("module", "entsoe"),
		baseUrl:    baseUrl,
		token:      token,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// DayAheadPrices fetches the A44 document for an area and expands it into
// spot prices. A query matching no data yields an empty slice, not an error.
func (c *Client) DayAheadPrices(ctx context.Context, area string, start, end time.Time) ([]types.SpotPrice, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("securityToken", c.token)
	q.Set("documentType", "A44")
	q.Set("in_Domain", area)
	q.Set("out_Domain", area)
	q.Set("periodStart", start.UTC().Format(periodLayout))
	q.Set("periodEnd", end.UTC().Format(periodLayout))

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseUrl+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{Timeout: c.timeout}
		}
		return nil, &UpstreamError{Detail: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{Timeout: c.timeout}
		}
		return nil, &UpstreamError{Detail: fmt.Sprintf("reading response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Status: resp.StatusCode, Detail: truncate(string(body), 256)}
	}

	var root struct {
		XMLName xml.Name
	}
	if err := xml.Unmarshal(body, &root); err != nil {
		return nil, &UpstreamError{Detail: fmt.Sprintf("malformed payload: %v", err)}
	}

	if root.XMLName.Local == "Acknowledgement_MarketDocument" {
		var ack acknowledgementDocument
		if err := xml.Unmarshal(body, &ack); err == nil && len(ack.Reasons) > 0 {
			c.logger.Debug("no data for query",
				slog.String("area", area),
				slog.String("reason", ack.Reasons[0].Text))
		}
		return []types.SpotPrice{}, nil
	}

	var doc publicationDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, &UpstreamError{Detail: fmt.Sprintf("malformed payload: %v", err)}
	}

	return expand(doc)
}

// expand flattens the document's periods into timestamped prices. A point's
// instant is the period start plus (position-1) resolution steps; positions
// may be sparse when the price is unchanged between steps.
func expand(doc publicationDocument) ([]types.SpotPrice, error) {
	prices := make([]types.SpotPrice, 0)
	for _, ts := range doc.TimeSeries {
		for _, p := range ts.Periods {
			periodStart, err := parseDocumentTime(p.TimeInterval.Start)
			if err != nil {
				return nil, &UpstreamError{Detail: err.Error()}
			}
			step, err := parseResolution(p.Resolution)
			if err != nil {
				return nil, &UpstreamError{Detail: err.Error()}
			}
			for _, pt := range p.Points {
				prices = append(prices, types.SpotPrice{
					Time:  periodStart.Add(time.Duration(pt.Position-1) * step),
					Price: pt.Price,
				})
			}
		}
	}
	return prices, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var uerr *url.Error
	return errors.As(err, &uerr) && uerr.Timeout()
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) > max {
		return s[:max]
	}
	return s
}
