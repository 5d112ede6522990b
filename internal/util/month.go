package util

import "time"

// SameMonthAnyYear reports whether t falls in the same calendar month as ref,
// ignoring the year. A March entry from last year matches this March.
// t is read in ref's location.
func SameMonthAnyYear(t, ref time.Time) bool {
	return t.In(ref.Location()).Month() == ref.Month()
}

// MonthBoundaries returns the first instant of the month containing t and the
// first instant of the following month, in t's location
func MonthBoundaries(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}

// MonthKey formats t as "2006-01"
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
