package entity

import (
	"fmt"
	"strings"
)

// TimeRange selects the span of a historical price series, in days.
type TimeRange string

const (
	Range1D   TimeRange = "1"
	Range7D   TimeRange = "7"
	Range30D  TimeRange = "30"
	Range365D TimeRange = "365"

	DefaultTimeRange = Range7D
)

// TimeRanges lists the supported ranges in ascending order.
var TimeRanges = []TimeRange{Range1D, Range7D, Range30D, Range365D}

// ParseTimeRange accepts "1", "7", "30", "365", optionally suffixed with "d".
// An empty string yields DefaultTimeRange.
func ParseTimeRange(s string) (TimeRange, error) {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "d")
	if s == "" {
		return DefaultTimeRange, nil
	}
	for _, r := range TimeRanges {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q (expected one of 1, 7, 30, 365)", ErrInvalidTimeRange, s)
}

// Intraday reports whether samples of this range should be labelled by time of day.
func (r TimeRange) Intraday() bool {
	return r == Range1D
}
