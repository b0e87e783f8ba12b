package leave

import "time"

// RequestDays returns the inclusive calendar-day count between start and
// end, ignoring any time-of-day on either bound so the count always matches
// what the DATE columns store. Callers must ensure end is not before start.
func RequestDays(start, end time.Time) int {
	return int(dateOnly(end).Sub(dateOnly(start)).Hours()/24) + 1
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Overlaps reports whether two inclusive day intervals intersect.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	return !start1.After(end2) && !start2.After(end1)
}

// AvailableBalance is the official balance minus days held by pending Annual
// requests, clamped at zero for display and validation.
func AvailableBalance(officialBalance, pendingDays int) int {
	if available := officialBalance - pendingDays; available > 0 {
		return available
	}
	return 0
}
