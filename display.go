package crontrigger

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// String renders the expression as canonical cron text. Parsing the result
// yields an identical expression.
func (e Expression) String() string {
	fields := e.Fields()
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.String()
	}
	return strings.Join(parts, " ")
}

// String renders the field as cron text.
func (f Field) String() string {
	switch f.Kind() {
	case FieldKindWildcard:
		if f.Step > 1 {
			return fmt.Sprintf("*/%d", f.Step)
		}
		return "*"
	case FieldKindRange:
		if f.Step > 1 {
			return fmt.Sprintf("%d-%d/%d", f.Values[0], f.Values[1], f.Step)
		}
		return fmt.Sprintf("%d-%d", f.Values[0], f.Values[1])
	default:
		return formatIntList(f.Values)
	}
}

func formatIntList(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func (s WeekdaySet) String() string {
	switch s {
	case AllWeekdays:
		return "every day"
	case NoWeekdays:
		return "no days"
	}
	days := s.Weekdays()
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = strings.ToLower(d.String())
	}
	return strings.Join(names, ", ")
}

func (s MonthSet) String() string {
	switch s {
	case AllMonths:
		return "every month"
	case NoMonths:
		return "no months"
	}
	months := s.Months()
	names := make([]string, len(months))
	for i, m := range months {
		names[i] = strings.ToLower(m.String()[:3])
	}
	return strings.Join(names, ", ")
}

func (w WhichWeek) String() string {
	if w == AllWeeks {
		return "every week"
	}
	names := []struct {
		week WhichWeek
		name string
	}{
		{FirstWeek, "first"},
		{SecondWeek, "second"},
		{ThirdWeek, "third"},
		{FourthWeek, "fourth"},
		{LastWeek, "last"},
	}
	var parts []string
	for _, n := range names {
		if w&n.week != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, ", ") + " week"
}

// String renders the recurrence in words.
func (r Recurrence) String() string {
	switch r.Kind {
	case RecurrenceDaily:
		if r.DaysInterval > 1 {
			return fmt.Sprintf("every %d days", r.DaysInterval)
		}
		return "every day"
	case RecurrenceMonthly:
		return fmt.Sprintf("on day %s of %s", formatIntList(r.DaysOfMonth), r.Months)
	case RecurrenceMonthlyByWeekday:
		return fmt.Sprintf("on %s of %s in %s", r.Weekdays, r.Weeks, r.Months)
	default:
		return r.Kind.String()
	}
}

// String renders the trigger in words, for example
// "every day from 09:00 every 15 min for 1 hour".
func (t Trigger) String() string {
	if t.Repetition == nil {
		return fmt.Sprintf("%s at %s", t.Recurrence, t.TimeOfDay())
	}
	return fmt.Sprintf("%s from %s every %s for %s",
		t.Recurrence, t.TimeOfDay(), durationDisplay(t.Repetition.Interval), durationDisplay(t.Repetition.Duration))
}

func durationDisplay(d time.Duration) string {
	if d%time.Hour == 0 {
		return unitDisplay(int(d/time.Hour), "hour")
	}
	return fmt.Sprintf("%d min", int(d/time.Minute))
}

func unitDisplay(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
