package domain

import "time"

// StartOfDay returns the "today" boundary for the given instant: the instant
// minus (unix seconds mod 86400). This is an epoch-day boundary, deliberately
// not calendar-aware for timezones.
func StartOfDay(now time.Time) time.Time {
	secs := now.Unix()
	return time.Unix(secs-secs%86400, 0)
}

// StartOfMonth returns the first day of the instant's month at 00:00:00 in the
// instant's location.
func StartOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// TrailingDays returns the boundary of the trailing window of whole days
// ending at the given instant.
func TrailingDays(now time.Time, days int) time.Time {
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}
