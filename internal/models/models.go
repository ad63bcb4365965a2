// Package models provides domain models for the trading journal.
package models

import "time"

// DateKeyLayout is the calendar-day format used to key daily XP logs,
// check-ins and rollups.
const DateKeyLayout = "2006-01-02"

// DateKey returns the calendar-day key for a timestamp.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// ParseDateKey parses a calendar-day key back into a time at midnight UTC.
func ParseDateKey(key string) (time.Time, error) {
	return time.Parse(DateKeyLayout, key)
}

// MonthKey returns the year-month key for a timestamp, used by monthly
// rollups.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
