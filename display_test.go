package crontrigger

import (
	"errors"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestTriggerString(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"0 9 * * *", []string{"every day at 09:00"}},
		{"0 6 */2 * *", []string{"every 2 days at 06:00"}},
		{"0 9 * * 1,3,5", []string{"on monday, wednesday, friday of every week in every month at 09:00"}},
		{"0 9 1,15 * *", []string{"on day 1,15 of every month at 09:00"}},
		{"0 12 1 1,7 *", []string{"on day 1 of jan, jul at 12:00"}},
		{"*/15 9 * * *", []string{"every day from 09:00 every 15 min for 1 hour"}},
		{"0 9-17/2 * * *", []string{"every day from 09:00 every 2 hours for 8 hours"}},
		{"0,30 8 * * 0,6", nil},
		{"0,30 8,20 * * 0", []string{
			"on sunday of every week in every month at 08:00",
			"on sunday of every week in every month at 08:30",
			"on sunday of every week in every month at 20:00",
			"on sunday of every week in every month at 20:30",
		}},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			var got []string
			for _, tr := range mustTriggers(t, test.input) {
				got = append(got, tr.String())
			}
			assert.Equal(t, test.want, got)
		})
	}
}

func TestSetStrings(t *testing.T) {
	assert.Equal(t, "every day", AllWeekdays.String())
	assert.Equal(t, "no days", NoWeekdays.String())
	assert.Equal(t, "sunday, saturday", NoWeekdays.With(time.Saturday).With(time.Sunday).String())
	assert.Equal(t, "every month", AllMonths.String())
	assert.Equal(t, "no months", NoMonths.String())
	assert.Equal(t, "mar, dec", NoMonths.With(time.December).With(time.March).String())
	assert.Equal(t, "every week", AllWeeks.String())
	assert.Equal(t, "first, last week", (FirstWeek | LastWeek).String())
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "daily", RecurrenceDaily.String())
	assert.Equal(t, "monthly", RecurrenceMonthly.String())
	assert.Equal(t, "monthly-by-weekday", RecurrenceMonthlyByWeekday.String())
	assert.Equal(t, "day-of-month", FieldDay.String())
	assert.Equal(t, "day-of-week", FieldWeekday.String())
	assert.Equal(t, "FieldType(0)", FieldType(0).String())
	assert.Equal(t, "range", FieldKindRange.String())
}

func TestDisplayRichWithoutSpan(t *testing.T) {
	_, err := translatorAt(testNow).CreateTriggers("0 6 * 3 *")
	var cerr *CronError
	assert.True(t, errors.As(err, &cerr))
	assert.Equal(t, "error: "+cerr.Message, cerr.DisplayRich())
}

func TestDisplayRichUnderlinesField(t *testing.T) {
	_, err := ParseExpression("0 9 * 1,2/3 *")
	var cerr *CronError
	assert.True(t, errors.As(err, &cerr))
	assert.Equal(t, "error: month field: list items must be plain numbers\n  0 9 * 1,2/3 *\n        ^^^^^", cerr.DisplayRich())
}
