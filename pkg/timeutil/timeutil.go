// Package timeutil provides calendar-day utilities for the registry.
// Attendance sessions and payments are stamped with plain ISO dates
// (YYYY-MM-DD) rather than full timestamps, so ordering and comparison
// work on the string form directly.
// No external dependencies - uses only standard library.
package timeutil

import (
	"strings"
	"time"
)

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
	// FormatHumanDate is a human-readable format.
	FormatHumanDate = "2 January 2006"
)

// Today returns today's date as an ISO day stamp in UTC.
func Today() string {
	return time.Now().UTC().Format(FormatDate)
}

// DayStamp formats a time as an ISO day stamp.
func DayStamp(t time.Time) string {
	return t.UTC().Format(FormatDate)
}

// ParseDay parses an ISO day stamp (YYYY-MM-DD).
func ParseDay(value string) (time.Time, error) {
	return time.Parse(FormatDate, strings.TrimSpace(value))
}

// IsValidDay reports whether value is a well-formed ISO day stamp.
func IsValidDay(value string) bool {
	_, err := ParseDay(value)
	return err == nil
}

// CompareDays orders two ISO day stamps: -1 if a is earlier, 0 if equal,
// 1 if a is later. Valid ISO stamps order lexicographically, which makes
// this a plain string compare.
func CompareDays(a, b string) int {
	return strings.Compare(a, b)
}

// DaysBetween calculates the number of whole days between two day stamps.
// Returns 0 when either stamp is malformed.
func DaysBetween(a, b string) int {
	ta, err := ParseDay(a)
	if err != nil {
		return 0
	}
	tb, err := ParseDay(b)
	if err != nil {
		return 0
	}
	days := int(tb.Sub(ta).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

// IsSameDay checks if two times fall on the same UTC calendar day.
func IsSameDay(t1, t2 time.Time) bool {
	u1, u2 := t1.UTC(), t2.UTC()
	return u1.Year() == u2.Year() && u1.YearDay() == u2.YearDay()
}
