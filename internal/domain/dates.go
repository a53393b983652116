package domain

import (
	"math"
	"time"
)

// Day-boundary helpers. All day-keyed bookkeeping (wallet rollover,
// quest cohorts, streaks, oracle caches) normalizes through these so the
// comparison is explicit and timezone-aware rather than scattered.

// DayOf normalizes a time to midnight of its calendar day, preserving
// the location.
func DayOf(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DayOf(a).Equal(DayOf(b))
}

// DaysBetween returns the number of whole calendar days from a to b
// (negative if b precedes a). Rounded, not truncated: a DST transition
// makes a calendar day 23 or 25 hours long.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(DayOf(b).Sub(DayOf(a)).Hours() / 24))
}
