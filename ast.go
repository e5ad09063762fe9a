package crontrigger

import (
	"fmt"
	"slices"
	"time"
)

// FieldType identifies one of the five cron fields.
type FieldType int

const (
	FieldMinute FieldType = iota + 1
	FieldHour
	FieldDay
	FieldMonth
	FieldWeekday
)

// fieldOrder is the position of each field within an expression.
var fieldOrder = [5]FieldType{FieldMinute, FieldHour, FieldDay, FieldMonth, FieldWeekday}

// Domain returns the inclusive range of values the field accepts.
func (t FieldType) Domain() (lo, hi int) {
	switch t {
	case FieldMinute:
		return 0, 59
	case FieldHour:
		return 0, 23
	case FieldDay:
		return 1, 31
	case FieldMonth:
		return 1, 12
	case FieldWeekday:
		return 0, 6
	default:
		panic(fmt.Sprintf("unknown field type %d", int(t)))
	}
}

func (t FieldType) String() string {
	switch t {
	case FieldMinute:
		return "minute"
	case FieldHour:
		return "hour"
	case FieldDay:
		return "day-of-month"
	case FieldMonth:
		return "month"
	case FieldWeekday:
		return "day-of-week"
	default:
		return fmt.Sprintf("FieldType(%d)", int(t))
	}
}

// FieldKind is the parsed form of a field.
type FieldKind int

const (
	FieldKindSingle FieldKind = iota
	FieldKindList
	FieldKindRange
	FieldKindWildcard
)

func (k FieldKind) String() string {
	switch k {
	case FieldKindSingle:
		return "single"
	case FieldKindList:
		return "list"
	case FieldKindRange:
		return "range"
	default:
		return "wildcard"
	}
}

// Field is the normalized form of one cron field.
type Field struct {
	Type FieldType
	// Values is empty for wildcards and holds [first, last] for ranges.
	Values              []int
	IsRange             bool
	IsWildcardRepeating bool
	// Step is 0 for single values and lists, 1 for "*" and unstepped ranges.
	Step int
	Span Span
}

// Kind returns the tagged form of the field.
func (f Field) Kind() FieldKind {
	switch {
	case f.IsWildcardRepeating:
		return FieldKindWildcard
	case f.IsRange:
		return FieldKindRange
	case len(f.Values) > 1:
		return FieldKindList
	default:
		return FieldKindSingle
	}
}

// IsEvery reports whether the field is an unconstrained "*".
func (f Field) IsEvery() bool {
	return f.Step == 1 && f.IsWildcardRepeating
}

// Expand returns every value the field selects, in ascending order for
// ranges and wildcards and in written order for lists.
func (f Field) Expand() []int {
	switch f.Kind() {
	case FieldKindWildcard:
		lo, hi := f.Type.Domain()
		return stepped(lo, hi, f.Step)
	case FieldKindRange:
		return stepped(f.Values[0], f.Values[1], f.Step)
	default:
		return slices.Clone(f.Values)
	}
}

// window returns the span of values the field covers: a range's bounds, a
// single value collapsed to itself, or the whole domain otherwise.
func (f Field) window() (start, end int) {
	if f.IsRange {
		return f.Values[0], f.Values[1]
	}
	if len(f.Values) == 1 {
		return f.Values[0], f.Values[0]
	}
	return f.Type.Domain()
}

// problem describes why f could not have been produced by parsing a field
// of type typ, or returns "" if it could.
func (f Field) problem(typ FieldType) string {
	switch {
	case f.Type != typ:
		return fmt.Sprintf("field of type %s in the %s position", f.Type, typ)
	case f.IsWildcardRepeating:
		if f.IsRange || len(f.Values) > 0 {
			return "wildcard cannot carry values"
		}
		if f.Step < 1 {
			return "step must be positive"
		}
		return ""
	case f.IsRange:
		if len(f.Values) != 2 {
			return "range needs exactly two values"
		}
		if f.Values[0] >= f.Values[1] {
			return fmt.Sprintf("range must begin with a lower number (got %d-%d)", f.Values[0], f.Values[1])
		}
		if f.Step < 1 {
			return "step must be positive"
		}
	default:
		if len(f.Values) == 0 {
			return "value cannot be empty"
		}
		if f.Step != 0 {
			return "list items must be plain numbers"
		}
	}
	lo, hi := typ.Domain()
	for _, v := range f.Values {
		if v < lo || v > hi {
			return fmt.Sprintf("value %d out of range %d-%d", v, lo, hi)
		}
	}
	return ""
}

func stepped(lo, hi, step int) []int {
	if step < 1 {
		step = 1
	}
	var out []int
	for i := lo; i <= hi; i += step {
		out = append(out, i)
	}
	return out
}

// Expression is a parsed five-field cron expression.
type Expression struct {
	Minute  Field
	Hour    Field
	Day     Field
	Month   Field
	Weekday Field
}

// Fields returns the fields in expression order.
func (e Expression) Fields() [5]Field {
	return [5]Field{e.Minute, e.Hour, e.Day, e.Month, e.Weekday}
}

// check rejects expressions that ParseExpression could not have built.
func (e Expression) check() error {
	for i, f := range e.Fields() {
		if msg := f.problem(fieldOrder[i]); msg != "" {
			return &CronError{Kind: ErrorKindFormat, Message: msg, Field: fieldOrder[i]}
		}
	}
	return nil
}

// --- Weekday and month sets ---

// WeekdaySet is a set of days of the week. Bit d is time.Weekday(d), so
// Sunday is the lowest bit, matching cron's 0=Sunday numbering.
type WeekdaySet uint8

const (
	NoWeekdays  WeekdaySet = 0
	AllWeekdays WeekdaySet = 1<<7 - 1
)

// Has reports whether d is in the set.
func (s WeekdaySet) Has(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

// With returns the set with d added.
func (s WeekdaySet) With(d time.Weekday) WeekdaySet {
	return s | 1<<uint(d)
}

// Weekdays lists the members of the set, Sunday first.
func (s WeekdaySet) Weekdays() []time.Weekday {
	var out []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// MonthSet is a set of months. Bit m-1 is time.Month(m).
type MonthSet uint16

const (
	NoMonths  MonthSet = 0
	AllMonths MonthSet = 1<<12 - 1
)

// Has reports whether m is in the set.
func (s MonthSet) Has(m time.Month) bool {
	return s&(1<<uint(m-1)) != 0
}

// With returns the set with m added.
func (s MonthSet) With(m time.Month) MonthSet {
	return s | 1<<uint(m-1)
}

// Months lists the members of the set, January first.
func (s MonthSet) Months() []time.Month {
	var out []time.Month
	for m := time.January; m <= time.December; m++ {
		if s.Has(m) {
			out = append(out, m)
		}
	}
	return out
}

// WhichWeek selects weeks of the month for weekday-based recurrences.
type WhichWeek int

const (
	FirstWeek WhichWeek = 1 << iota
	SecondWeek
	ThirdWeek
	FourthWeek
	LastWeek

	AllWeeks = FirstWeek | SecondWeek | ThirdWeek | FourthWeek | LastWeek
)

// TimeOfDay represents a time of day (hour and minute).
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// TotalMinutes returns the time as total minutes from midnight.
func (t TimeOfDay) TotalMinutes() int {
	return t.Hour*60 + t.Minute
}

// --- Recurrences ---

// RecurrenceKind represents the shape of a recurring schedule.
type RecurrenceKind int

const (
	RecurrenceDaily RecurrenceKind = iota
	RecurrenceMonthly
	RecurrenceMonthlyByWeekday
)

func (k RecurrenceKind) String() string {
	switch k {
	case RecurrenceDaily:
		return "daily"
	case RecurrenceMonthly:
		return "monthly"
	case RecurrenceMonthlyByWeekday:
		return "monthly-by-weekday"
	default:
		return fmt.Sprintf("RecurrenceKind(%d)", int(k))
	}
}

// Recurrence is the calendar part of a trigger (one of three variants).
type Recurrence struct {
	Kind RecurrenceKind

	// Daily fields
	DaysInterval int

	// Monthly fields
	DaysOfMonth []int

	// Shared by Monthly and MonthlyByWeekday
	Months MonthSet

	// MonthlyByWeekday fields
	Weekdays WeekdaySet
	Weeks    WhichWeek
}

// NewDailyRecurrence creates a recurrence firing every interval days.
func NewDailyRecurrence(interval int) Recurrence {
	return Recurrence{Kind: RecurrenceDaily, DaysInterval: interval}
}

// NewMonthlyRecurrence creates a recurrence firing on the given days of the given months.
func NewMonthlyRecurrence(days []int, months MonthSet) Recurrence {
	return Recurrence{Kind: RecurrenceMonthly, DaysOfMonth: slices.Clone(days), Months: months}
}

// NewMonthlyByWeekdayRecurrence creates a recurrence firing on the given
// weekdays of the selected weeks of the given months.
func NewMonthlyByWeekdayRecurrence(weekdays WeekdaySet, months MonthSet, weeks WhichWeek) Recurrence {
	return Recurrence{Kind: RecurrenceMonthlyByWeekday, Weekdays: weekdays, Months: months, Weeks: weeks}
}

func (r Recurrence) clone() Recurrence {
	r.DaysOfMonth = slices.Clone(r.DaysOfMonth)
	return r
}

// --- Triggers ---

// Repetition fires a trigger every Interval for Duration after its start.
type Repetition struct {
	Interval time.Duration
	Duration time.Duration
}

// Trigger is one recurring trigger description handed to a scheduler.
type Trigger struct {
	Recurrence Recurrence
	// Start is the creation date at the trigger's time of day.
	Start      time.Time
	Repetition *Repetition // nil for a single fixed time
}

// TimeOfDay returns the time of day the trigger (or its repetition) starts.
func (t Trigger) TimeOfDay() TimeOfDay {
	return TimeOfDay{Hour: t.Start.Hour(), Minute: t.Start.Minute()}
}
