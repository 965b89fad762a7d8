package util

import "time"

// DayLayout is the calendar-day format used in rotated file names.
const DayLayout = "2006-01-02"

// Day truncates a time to midnight in its own location.
func Day(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
}

// FormatDay renders a time as a calendar day.
func FormatDay(ts time.Time) string {
	return ts.Format(DayLayout)
}

// ParseDay parses a calendar day. Returns (t, true) if it parsed.
func ParseDay(s string) (time.Time, bool) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SameDay reports whether two times fall on the same calendar day in the
// location of the first.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b.In(a.Location())))
}
