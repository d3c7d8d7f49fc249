// utils/dates.go
package utils

import "time"

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	return BeginningOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// ParseDateParam accepts YYYY-MM-DD and falls back when empty or malformed.
func ParseDateParam(raw string, fallback time.Time) time.Time {
	if raw == "" {
		return fallback
	}
	t, err := time.ParseInLocation("2006-01-02", raw, fallback.Location())
	if err != nil {
		return fallback
	}
	return t
}
