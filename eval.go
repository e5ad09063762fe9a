package crontrigger

import (
	"iter"
	"slices"
	"time"
)

// maxSearchDays bounds the day-by-day search in NextFrom. Four years covers
// every leap-year cycle, so a trigger with no occurrence inside the bound
// (for example day 31 restricted to February) has none at all.
const maxSearchDays = 4*366 + 1

// Matches reports whether the trigger fires at dt (to the minute).
func (t Trigger) Matches(dt time.Time) bool {
	dt = dt.In(t.Start.Location())
	if dt.Before(t.Start) {
		return false
	}
	at := dt.Truncate(time.Minute)
	day := time.Date(dt.Year(), dt.Month(), dt.Day(), 0, 0, 0, 0, dt.Location())
	// A repetition started late on the previous day may still be firing.
	for _, d := range []time.Time{prevDate(day), day} {
		if !t.firesOnDate(d) {
			continue
		}
		for _, ft := range t.fireTimesOn(d) {
			if ft.Equal(at) {
				return true
			}
		}
	}
	return false
}

// NextFrom returns the first time strictly after now at which the trigger
// fires. It returns false if the trigger never fires again.
func (t Trigger) NextFrom(now time.Time) (time.Time, bool) {
	loc := t.Start.Location()
	now = now.In(loc)
	// Start a day early: a repetition begun yesterday can spill past midnight.
	day := prevDate(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc))
	if day.Before(t.Start) {
		day = time.Date(t.Start.Year(), t.Start.Month(), t.Start.Day(), 0, 0, 0, 0, loc)
	}

	for range maxSearchDays + 1 {
		if t.firesOnDate(day) {
			for _, ft := range t.fireTimesOn(day) {
				if ft.After(now) && !ft.Before(t.Start) {
					return ft, true
				}
			}
		}
		day = nextDate(day)
	}
	return time.Time{}, false
}

// firesOnDate reports whether the recurrence selects the calendar date of d.
func (t Trigger) firesOnDate(d time.Time) bool {
	r := t.Recurrence
	switch r.Kind {
	case RecurrenceDaily:
		n := daysBetween(t.Start, d)
		return n >= 0 && r.DaysInterval > 0 && n%r.DaysInterval == 0
	case RecurrenceMonthly:
		return r.Months.Has(d.Month()) && slices.Contains(r.DaysOfMonth, d.Day())
	case RecurrenceMonthlyByWeekday:
		return r.Months.Has(d.Month()) && r.Weekdays.Has(d.Weekday()) && r.Weeks.includes(d)
	default:
		return false
	}
}

// includes reports whether d falls in one of the selected weeks of its month.
func (w WhichWeek) includes(d time.Time) bool {
	if week := (d.Day() - 1) / 7; week < 4 && w&(1<<uint(week)) != 0 {
		return true
	}
	lastOfMonth := time.Date(d.Year(), d.Month()+1, 0, 0, 0, 0, 0, d.Location()).Day()
	return w&LastWeek != 0 && d.Day() > lastOfMonth-7
}

// fireTimesOn returns the fire times of the run that starts on the date of
// d, ascending. A repetition fires every Interval while strictly inside
// Duration, so its last fires may fall on the following date.
func (t Trigger) fireTimesOn(d time.Time) []time.Time {
	start := atTimeOnDate(d, t.TimeOfDay(), d.Location())
	if t.Repetition == nil || t.Repetition.Interval <= 0 {
		return []time.Time{start}
	}
	var out []time.Time
	for offset := time.Duration(0); offset < t.Repetition.Duration; offset += t.Repetition.Interval {
		out = append(out, start.Add(offset))
	}
	return out
}

// Occurrences returns a lazy iterator over the merged fire times of
// triggers strictly after from. Coinciding fire times are yielded once.
func Occurrences(triggers []Trigger, from time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		current := from
		for {
			var next time.Time
			found := false
			for _, t := range triggers {
				if ft, ok := t.NextFrom(current); ok && (!found || ft.Before(next)) {
					next, found = ft, true
				}
			}
			if !found {
				return
			}
			current = next
			if !yield(next) {
				return
			}
		}
	}
}

// Between returns a bounded iterator of occurrences where `from < occurrence <= to`.
func Between(triggers []Trigger, from, to time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for dt := range Occurrences(triggers, from) {
			if dt.After(to) {
				return
			}
			if !yield(dt) {
				return
			}
		}
	}
}
