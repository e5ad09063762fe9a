package crontrigger

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
)

// testNow is a Monday.
var testNow = time.Date(2026, 2, 2, 10, 30, 0, 0, time.UTC)

func translatorAt(now time.Time) *Translator {
	clk := clock.NewMock()
	clk.Set(now)
	return NewTranslator(clk, zerolog.Nop())
}

func mustTriggers(t *testing.T, input string) []Trigger {
	t.Helper()
	triggers, err := translatorAt(testNow).CreateTriggers(input)
	assert.NoError(t, err, "%s", input)
	return triggers
}

func startAt(hour, minute int) time.Time {
	return time.Date(2026, 2, 2, hour, minute, 0, 0, time.UTC)
}

// =============================================================================
// Recurrence classification
// =============================================================================

func TestSingleWeekday(t *testing.T) {
	triggers := mustTriggers(t, "30 14 * * 2")
	assert.Equal(t, []Trigger{{
		Recurrence: NewMonthlyByWeekdayRecurrence(NoWeekdays.With(time.Tuesday), AllMonths, AllWeeks),
		Start:      startAt(14, 30),
	}}, triggers)
}

func TestWeekdayListBits(t *testing.T) {
	triggers := mustTriggers(t, "0 9 * * 1,3,5")
	assert.Equal(t, 1, len(triggers))
	rec := triggers[0].Recurrence
	assert.Equal(t, RecurrenceMonthlyByWeekday, rec.Kind)
	assert.Equal(t, WeekdaySet(1<<1|1<<3|1<<5), rec.Weekdays)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, rec.Weekdays.Weekdays())
	assert.Equal(t, AllMonths, rec.Months)
	assert.Equal(t, AllWeeks, rec.Weeks)
	assert.Zero(t, triggers[0].Repetition)
}

func TestDaysOfMonth(t *testing.T) {
	triggers := mustTriggers(t, "0 9 1,15 * *")
	assert.Equal(t, []Trigger{{
		Recurrence: NewMonthlyRecurrence([]int{1, 15}, AllMonths),
		Start:      startAt(9, 0),
	}}, triggers)
}

func TestWeekdayTakesPriorityOverDayOfMonth(t *testing.T) {
	triggers := mustTriggers(t, "0 9 1,15 * 1")
	assert.Equal(t, 1, len(triggers))
	assert.Equal(t, RecurrenceMonthlyByWeekday, triggers[0].Recurrence.Kind)
	assert.Equal(t, NoWeekdays.With(time.Monday), triggers[0].Recurrence.Weekdays)
	assert.Zero(t, triggers[0].Recurrence.DaysOfMonth)
}

func TestDailyInterval(t *testing.T) {
	tests := []struct {
		input    string
		interval int
	}{
		{"0 6 * * *", 1},
		{"0 6 */1 * *", 1},
		{"0 6 */2 * *", 2},
		{"0 6 */10 * *", 10},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			triggers := mustTriggers(t, test.input)
			assert.Equal(t, []Trigger{{
				Recurrence: NewDailyRecurrence(test.interval),
				Start:      startAt(6, 0),
			}}, triggers)
		})
	}
}

func TestWeekdaySets(t *testing.T) {
	tests := []struct {
		field string
		want  []time.Weekday
	}{
		{"0", []time.Weekday{time.Sunday}},
		{"6", []time.Weekday{time.Saturday}},
		{"0,6", []time.Weekday{time.Sunday, time.Saturday}},
		{"1-5", []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}},
		{"1-5/2", []time.Weekday{time.Monday, time.Wednesday, time.Friday}},
		{"*/2", []time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday}},
	}
	for _, test := range tests {
		t.Run(test.field, func(t *testing.T) {
			triggers := mustTriggers(t, "0 9 * * "+test.field)
			assert.Equal(t, test.want, triggers[0].Recurrence.Weekdays.Weekdays())
		})
	}
}

func TestMonthSets(t *testing.T) {
	tests := []struct {
		field string
		want  []time.Month
	}{
		{"*", []time.Month{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}},
		{"1", []time.Month{time.January}},
		{"12", []time.Month{time.December}},
		{"1,7", []time.Month{time.January, time.July}},
		{"3-9/3", []time.Month{time.March, time.June, time.September}},
		{"*/6", []time.Month{time.January, time.July}},
		{"1-12", []time.Month{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}},
	}
	for _, test := range tests {
		t.Run(test.field, func(t *testing.T) {
			triggers := mustTriggers(t, "0 9 1 "+test.field+" *")
			assert.Equal(t, RecurrenceMonthly, triggers[0].Recurrence.Kind)
			assert.Equal(t, test.want, triggers[0].Recurrence.Months.Months())
		})
	}
}

func TestDayRangesExpand(t *testing.T) {
	tests := []struct {
		field string
		want  []int
	}{
		{"1-10/3", []int{1, 4, 7, 10}},
		{"28-31", []int{28, 29, 30, 31}},
		{"15,1", []int{15, 1}},
		{"5/2", []int{5}},
	}
	for _, test := range tests {
		t.Run(test.field, func(t *testing.T) {
			triggers := mustTriggers(t, "0 9 "+test.field+" * *")
			assert.Equal(t, test.want, triggers[0].Recurrence.DaysOfMonth)
		})
	}
}

func TestUnclassifiableCalendar(t *testing.T) {
	for _, input := range []string{"0 6 * 3 *", "0 6 */2 3 *", "0 6 * 1-6 *"} {
		t.Run(input, func(t *testing.T) {
			_, err := translatorAt(testNow).CreateTriggers(input)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupported))
			assert.False(t, errors.Is(err, ErrFormat))

			var cerr *CronError
			assert.True(t, errors.As(err, &cerr))
			assert.Equal(t, input, cerr.Input)
			assert.Zero(t, cerr.Span)
		})
	}
}

// =============================================================================
// Time expansion
// =============================================================================

func TestEveryNMinutes(t *testing.T) {
	for n := 1; n <= 59; n++ {
		input := fmt.Sprintf("*/%d * * * *", n)
		t.Run(input, func(t *testing.T) {
			triggers := mustTriggers(t, input)
			assert.Equal(t, []Trigger{{
				Recurrence: NewDailyRecurrence(1),
				Start:      startAt(0, 0),
				Repetition: &Repetition{Interval: time.Duration(n) * time.Minute, Duration: time.Hour},
			}}, triggers)
		})
	}
}

func TestRepeatingWindows(t *testing.T) {
	tests := []struct {
		input string
		start time.Time
		rep   Repetition
	}{
		{"0 9-17/2 * * *", startAt(9, 0), Repetition{2 * time.Hour, 8 * time.Hour}},
		{"0 9-17 * * *", startAt(9, 0), Repetition{time.Hour, 8 * time.Hour}},
		{"30 */6 * * *", startAt(0, 30), Repetition{6 * time.Hour, 23 * time.Hour}},
		{"0 * * * *", startAt(0, 0), Repetition{time.Hour, 23 * time.Hour}},
		{"* * * * *", startAt(0, 0), Repetition{time.Minute, time.Hour}},
		{"*/15 9 * * *", startAt(9, 0), Repetition{15 * time.Minute, time.Hour}},
		{"10-40/10 9 * * *", startAt(9, 10), Repetition{10 * time.Minute, time.Hour}},
		{"0-30 9 * * *", startAt(9, 0), Repetition{time.Minute, time.Hour}},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			triggers := mustTriggers(t, test.input)
			assert.Equal(t, 1, len(triggers))
			assert.Equal(t, test.start, triggers[0].Start)
			assert.Equal(t, &test.rep, triggers[0].Repetition)
		})
	}
}

func TestCartesianProductOrder(t *testing.T) {
	triggers := mustTriggers(t, "0,30 8,20 * * *")
	var starts []string
	for _, tr := range triggers {
		starts = append(starts, tr.TimeOfDay().String())
		assert.Zero(t, tr.Repetition)
		assert.Equal(t, NewDailyRecurrence(1), tr.Recurrence)
	}
	assert.Equal(t, []string{"08:00", "08:30", "20:00", "20:30"}, starts)
}

func TestTriggersDoNotShareRecurrence(t *testing.T) {
	triggers := mustTriggers(t, "0,30 8,20 1,15 * *")
	assert.Equal(t, 4, len(triggers))
	triggers[0].Recurrence.DaysOfMonth[0] = 99
	for _, tr := range triggers[1:] {
		assert.Equal(t, []int{1, 15}, tr.Recurrence.DaysOfMonth)
	}
}

func TestBothFieldsRepeating(t *testing.T) {
	for _, input := range []string{
		"0-30/5 9-17/2 * * *",
		"*/5 9-17 * * *",
		"0,30 9-17 * * *",
		"* 8,20 * * *",
		"5-10 * * * *",
		"0-30/5 * * * *",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := translatorAt(testNow).CreateTriggers(input)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupported))
			assert.Contains(t, err.Error(), "only one of them may")
		})
	}
}

func TestNoExpansionRuleYieldsNoTriggers(t *testing.T) {
	var buf bytes.Buffer
	clk := clock.NewMock()
	clk.Set(testNow)
	tr := NewTranslator(clk, zerolog.New(&buf))

	triggers, err := tr.CreateTriggers("0,30 9 * * *")
	assert.NoError(t, err)
	assert.NotZero(t, triggers)
	assert.Equal(t, 0, len(triggers))
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"expression":"0,30 9 * * *"`)
}

// Every combination of minute and hour shapes either yields triggers, is
// rejected as unsupported, or (single paired with list) yields nothing.
func TestTimeExpansionCoverage(t *testing.T) {
	minutes := []string{"5", "0,30", "0-30", "0-30/5", "*", "*/15"}
	hours := []string{"9", "8,20", "9-17", "9-17/2", "*", "*/2"}

	var empty, unsupported []string
	for _, m := range minutes {
		for _, h := range hours {
			input := m + " " + h + " * * *"
			triggers, err := translatorAt(testNow).CreateTriggers(input)
			if err != nil {
				assert.True(t, errors.Is(err, ErrUnsupported), "%s: %v", input, err)
				unsupported = append(unsupported, m+" "+h)
				continue
			}
			if len(triggers) == 0 {
				empty = append(empty, m+" "+h)
			}
		}
	}
	assert.Equal(t, []string{"5 8,20", "0,30 9"}, empty)
	assert.Equal(t, []string{
		"0,30 9-17", "0,30 9-17/2", "0,30 *", "0,30 */2",
		"0-30 8,20", "0-30 9-17", "0-30 9-17/2", "0-30 *", "0-30 */2",
		"0-30/5 8,20", "0-30/5 9-17", "0-30/5 9-17/2", "0-30/5 *", "0-30/5 */2",
		"* 8,20", "* 9-17", "* 9-17/2", "* */2",
		"*/15 8,20", "*/15 9-17", "*/15 9-17/2", "*/15 */2",
	}, unsupported)
}

// =============================================================================
// Errors, start time and determinism
// =============================================================================

func TestFormatErrorsSurface(t *testing.T) {
	for _, input := range []string{"60 0 * * *", "0 0 10-5 * *", "0 0 * * * *", "0 0 * * 7", "*/0 * * * *"} {
		t.Run(input, func(t *testing.T) {
			triggers, err := translatorAt(testNow).CreateTriggers(input)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrFormat))
			assert.Zero(t, triggers)
		})
	}
}

func TestStartKeepsClockLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2026, 7, 4, 23, 59, 0, 0, loc)
	triggers, err := translatorAt(now).CreateTriggers("15 7 * * *")
	assert.NoError(t, err)
	assert.Equal(t, "2026-07-04T07:15:00-05:00", triggers[0].Start.Format(time.RFC3339))
	assert.Equal(t, loc, triggers[0].Start.Location())
}

func TestDeterministic(t *testing.T) {
	tr := translatorAt(testNow)
	for _, input := range []string{"0,30 8,20 1,15 * *", "*/10 * * * 1-5", "0 9-17/2 * 1,7 *"} {
		first, err := tr.CreateTriggers(input)
		assert.NoError(t, err)
		second, err := tr.CreateTriggers(input)
		assert.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestConcurrentTranslations(t *testing.T) {
	tr := translatorAt(testNow)
	want, err := tr.CreateTriggers("0,30 8,20 * * 1-5")
	assert.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]Trigger, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = tr.CreateTriggers("0,30 8,20 * * 1-5")
		}()
	}
	wg.Wait()
	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestSynthesizeParsedExpression(t *testing.T) {
	expr, err := ParseExpression("0 9 * * 1-5")
	assert.NoError(t, err)
	triggers, err := translatorAt(testNow).Synthesize(expr)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(triggers))
	assert.Equal(t, startAt(9, 0), triggers[0].Start)
}

func TestSynthesizeRejectsHandBuiltFields(t *testing.T) {
	valid, err := ParseExpression("0 9 * * *")
	assert.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(e *Expression)
		want   string
	}{
		{"zero_expression", func(e *Expression) { *e = Expression{} }, "minute field: field of type FieldType(0) in the minute position"},
		{"swapped_fields", func(e *Expression) { e.Minute, e.Hour = e.Hour, e.Minute }, "minute field: field of type hour in the minute position"},
		{"value_out_of_range", func(e *Expression) { e.Minute.Values = []int{70} }, "minute field: value 70 out of range 0-59"},
		{"range_without_bounds", func(e *Expression) { e.Hour = Field{Type: FieldHour, IsRange: true, Step: 1} }, "hour field: range needs exactly two values"},
		{"inverted_range", func(e *Expression) { e.Hour = Field{Type: FieldHour, IsRange: true, Values: []int{17, 9}, Step: 1} }, "hour field: range must begin with a lower number"},
		{"wildcard_marked_range", func(e *Expression) { e.Day.IsRange = true }, "day-of-month field: wildcard cannot carry values"},
		{"wildcard_without_step", func(e *Expression) { e.Month.Step = 0 }, "month field: step must be positive"},
		{"stepped_single", func(e *Expression) { e.Minute.Step = 5 }, "minute field: list items must be plain numbers"},
		{"empty_single", func(e *Expression) { e.Weekday = Field{Type: FieldWeekday} }, "day-of-week field: value cannot be empty"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			expr := valid
			test.mutate(&expr)
			triggers, err := translatorAt(testNow).Synthesize(expr)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrFormat))
			assert.Contains(t, err.Error(), test.want)
			assert.Zero(t, triggers)
		})
	}
}

func TestSynthesizeHandBuiltExpression(t *testing.T) {
	every := func(typ FieldType) Field { return Field{Type: typ, IsWildcardRepeating: true, Step: 1} }
	expr := Expression{
		Minute:  Field{Type: FieldMinute, Values: []int{15}},
		Hour:    Field{Type: FieldHour, Values: []int{7}},
		Day:     every(FieldDay),
		Month:   every(FieldMonth),
		Weekday: Field{Type: FieldWeekday, Values: []int{1, 5}, IsRange: true, Step: 1},
	}
	triggers, err := translatorAt(testNow).Synthesize(expr)
	assert.NoError(t, err)
	assert.Equal(t, []Trigger{{
		Recurrence: NewMonthlyByWeekdayRecurrence(WeekdaySet(0b0111110), AllMonths, AllWeeks),
		Start:      startAt(7, 15),
	}}, triggers)
}

func TestPackageHelpers(t *testing.T) {
	assert.True(t, Validate("0 9 * * 1-5"))
	assert.False(t, Validate("0 9 * * MON"))
	assert.False(t, Validate("0 6 * 3 *"))
	assert.Panics(t, func() { MustCreateTriggers("bogus") })
	assert.Equal(t, 1, len(MustCreateTriggers("0 9 * * *")))
}
