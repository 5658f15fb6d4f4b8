package prices

import (
	"errors"
	"fmt"
	"time"

	"github.com/angas/powerprice-go/entsoe"
	"github.com/angas/powerprice-go/zones"
)

type InvalidRangeError struct {
	Start  time.Time
	End    time.Time
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range %s..%s: %s",
		e.Start.Format(dateLayout), e.End.Format(dateLayout), e.Reason)
}

// Error kinds for the per-zone error envelope handed to consumers.
const (
	KindUnknownZone     = "unknown_zone"
	KindUpstreamTimeout = "upstream_timeout"
	KindUpstream        = "upstream_error"
	KindInvalidRange    = "invalid_range"
	KindInternal        = "internal_error"
)

func Kind(err error) string {
	var unknownZone *zones.UnknownZoneError
	var timeout *entsoe.TimeoutError
	var upstream *entsoe.UpstreamError
	var invalidRange *InvalidRangeError
	switch {
	case errors.As(err, &unknownZone):
		return KindUnknownZone
	case errors.As(err, &timeout):
		return KindUpstreamTimeout
	case errors.As(err, &upstream):
		return KindUpstream
	case errors.As(err, &invalidRange):
		return KindInvalidRange
	default:
		return KindInternal
	}
}
