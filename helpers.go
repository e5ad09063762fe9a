package crontrigger

import (
	"time"
)

// atTimeOnDate creates a time.Time at the given date and time of day in the given location.
// Handles DST: spring forward pushes non-existent times forward, fall back uses first occurrence.
func atTimeOnDate(d time.Time, tod TimeOfDay, loc *time.Location) time.Time {
	t := time.Date(d.Year(), d.Month(), d.Day(), tod.Hour, tod.Minute, 0, 0, loc)

	// time.Date normalizes a wall time inside a spring-forward gap to before
	// the gap; move it past the gap instead.
	if t.Hour() != tod.Hour || t.Minute() != tod.Minute {
		requestedMinutes := tod.TotalMinutes()
		gotMinutes := t.Hour()*60 + t.Minute()
		gapMinutes := requestedMinutes - gotMinutes

		if gapMinutes > 0 {
			return t.Add(time.Duration(gapMinutes) * time.Minute)
		}
	}

	return t
}

// dateOnly returns the calendar date of t as midnight UTC, for date arithmetic.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the number of calendar days from a to b.
func daysBetween(a, b time.Time) int {
	return int(dateOnly(b).Sub(dateOnly(a)).Hours() / 24)
}

// nextDate returns the calendar date after d, at midnight in d's location.
func nextDate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day()+1, 0, 0, 0, 0, d.Location())
}

// prevDate returns the calendar date before d, at midnight in d's location.
func prevDate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day()-1, 0, 0, 0, 0, d.Location())
}
