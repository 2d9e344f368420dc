package service

import "time"

// nowFunc lets tests pin the clock. Date-sensitive reads (overdue flags,
// stats buckets) must go through the service's nowFn, never time.Now
// directly.
type nowFunc func() time.Time

// sameDate strips the time-of-day for date-only comparisons.
func sameDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// overdue reports whether due has passed as of now, comparing dates only:
// a plan due today is not overdue until tomorrow.
func overdue(due, now time.Time) bool {
	return sameDate(due).Before(sameDate(now))
}
