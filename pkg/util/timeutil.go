package util

import "time"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// DayOf truncates a timestamp to its UTC calendar day.
func DayOf(ts time.Time) time.Time {
	ts = ts.UTC()
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthKey renders the UTC year-month bucket key, e.g. "2024-07".
func MonthKey(ts time.Time) string {
	return ts.UTC().Format("2006-01")
}
