package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/tarot/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == "Local" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}

// FormatTimestamp renders t the way records store it: UTC with millisecond
// precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(constants.TimestampFormat)
}

// ParseTimestamp parses a stored record timestamp. Any RFC 3339 value is
// accepted, with or without fractional seconds.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

// DisplayTimestamp converts a stored timestamp to the given timezone for
// printing. Values that do not parse are returned unchanged.
func DisplayTimestamp(s string, loc *time.Location) string {
	t, err := ParseTimestamp(s)
	if err != nil {
		return s
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(constants.DisplayFormat)
}

// UTCDay returns the calendar date of t in UTC (YYYY-MM-DD). Daily fortunes
// are keyed by this value.
func UTCDay(t time.Time) string {
	return t.UTC().Format(constants.DateFormat)
}
