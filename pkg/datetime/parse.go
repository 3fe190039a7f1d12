// Package datetime provides date and time utility functions.
package datetime

import (
	"strings"
	"time"

	"github.com/iwvelando/microloan/pkg/constants"
)

const (
	// DateLayout is the format expected on input and is also the output
	// date format.
	DateLayout = constants.DateLayout
)

// ParseDate parses an optional YYYY-MM-DD date. An empty string yields the
// zero time, which callers treat as "today".
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, nil
	}
	return time.Parse(DateLayout, trimmed)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths advances t by the given number of calendar months. When the day
// of t does not exist in the target month the result is clamped to the last
// day of that month, so Jan 31 + 1 month is Feb 28 (or Feb 29 in a leap year).
// time.AddDate would instead overflow into March.
func AddMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	target := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	last := DaysInMonth(target.Year(), target.Month())
	if day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
