package util

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidDate = errors.New("invalid date format (use YYYY-MM-DD or RFC3339)")

// parseBound accepts RFC3339 timestamps or bare dates. Blank input is "not set".
func parseBound(s *string) (t time.Time, ok bool, dateOnly bool, err error) {
	if s == nil {
		return time.Time{}, false, false, nil
	}
	raw := strings.TrimSpace(*s)
	if raw == "" {
		return time.Time{}, false, false, nil
	}
	if tt, e := time.Parse(time.RFC3339, raw); e == nil {
		return tt, true, false, nil
	}
	if tt, e := time.Parse("2006-01-02", raw); e == nil {
		return tt, true, true, nil
	}
	return time.Time{}, false, false, ErrInvalidDate
}

// ParseDateRange turns optional start/end filters into a half-open range.
// A date-only end covers that whole day.
func ParseDateRange(startStr, endStr *string) (start time.Time, hasStart bool, endExclusive time.Time, hasEnd bool, err error) {
	rawStart, startOk, _, err := parseBound(startStr)
	if err != nil {
		return time.Time{}, false, time.Time{}, false, err
	}
	rawEnd, endOk, endDateOnly, err := parseBound(endStr)
	if err != nil {
		return time.Time{}, false, time.Time{}, false, err
	}

	if startOk && endOk && rawEnd.Before(rawStart) {
		rawStart, rawEnd = rawEnd, rawStart
	}

	if startOk {
		start, hasStart = rawStart, true
	}
	if endOk {
		endExclusive, hasEnd = rawEnd, true
		if endDateOnly {
			endExclusive = rawEnd.AddDate(0, 0, 1)
		}
	}
	return start, hasStart, endExclusive, hasEnd, nil
}
