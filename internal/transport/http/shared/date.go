package shared

import "time"

// ParseDate accepts YYYY-MM-DD or RFC3339 input and always returns the
// calendar day at midnight UTC. Day counts, overlap checks and DATE columns
// all work in whole days, so any time-of-day a client sends is dropped here
// before it can skew them.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, value)
		if err != nil {
			return time.Time{}, err
		}
	}
	return midnightUTC(parsed), nil
}

func midnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
