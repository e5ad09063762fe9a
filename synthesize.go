package crontrigger

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
)

// Translator converts cron expressions into triggers. Its clock supplies
// the date every trigger starts on. A Translator is safe for concurrent use.
type Translator struct {
	clock clock.Clock
	log   zerolog.Logger
}

// NewTranslator creates a Translator reading "today" from clk.
func NewTranslator(clk clock.Clock, log zerolog.Logger) *Translator {
	return &Translator{clock: clk, log: log}
}

// CreateTriggers parses input and synthesizes its triggers.
func (t *Translator) CreateTriggers(input string) ([]Trigger, error) {
	expr, err := ParseExpression(input)
	if err != nil {
		return nil, err
	}
	return t.synthesize(expr, input)
}

// Synthesize maps a parsed expression onto triggers. A hand-built
// expression is checked first and rejected with a format error if parsing
// could not have produced it.
func (t *Translator) Synthesize(expr Expression) ([]Trigger, error) {
	if err := expr.check(); err != nil {
		return nil, err
	}
	return t.synthesize(expr, expr.String())
}

func (t *Translator) synthesize(expr Expression, input string) ([]Trigger, error) {
	log := t.log.With().Str("expression", input).Logger()

	base, rule, ok := classify(expr)
	if !ok {
		return nil, UnsupportedExpressionError(
			"day-of-month, month and day-of-week fields do not map onto a daily, monthly or weekday recurrence", input)
	}
	log.Debug().Str("rule", rule).Stringer("recurrence", base.Kind).Msg("Classified recurrence")

	timings, rule, err := expandTimes(expr, input)
	if err != nil {
		return nil, err
	}
	if len(timings) == 0 {
		log.Warn().Msg("No time expansion rule matched; expression produces no triggers")
		return []Trigger{}, nil
	}
	log.Debug().Str("rule", rule).Int("triggers", len(timings)).Msg("Expanded times")

	today := t.clock.Now()
	triggers := make([]Trigger, len(timings))
	for i, tm := range timings {
		triggers[i] = Trigger{
			Recurrence: base.clone(),
			Start:      atTimeOnDate(today, tm.tod, today.Location()),
			Repetition: tm.repetition,
		}
	}
	return triggers, nil
}

// --- Phase A: recurrence classification ---

type classificationRule struct {
	name  string
	apply func(Expression) (Recurrence, bool)
}

// classificationRules are tried in order; the first match wins. Weekday
// constraints take priority over day-of-month constraints.
var classificationRules = []classificationRule{
	{"monthly-by-weekday", func(e Expression) (Recurrence, bool) {
		if e.Weekday.IsEvery() {
			return Recurrence{}, false
		}
		return NewMonthlyByWeekdayRecurrence(weekdaySetOf(e.Weekday), monthSetOf(e.Month), AllWeeks), true
	}},
	{"monthly", func(e Expression) (Recurrence, bool) {
		if len(e.Day.Values) == 0 {
			return Recurrence{}, false
		}
		return NewMonthlyRecurrence(e.Day.Expand(), monthSetOf(e.Month)), true
	}},
	{"daily", func(e Expression) (Recurrence, bool) {
		if !e.Month.IsEvery() || !e.Weekday.IsEvery() || !e.Day.IsWildcardRepeating {
			return Recurrence{}, false
		}
		return NewDailyRecurrence(e.Day.Step), true
	}},
}

func classify(expr Expression) (Recurrence, string, bool) {
	for _, rule := range classificationRules {
		if r, ok := rule.apply(expr); ok {
			return r, rule.name, true
		}
	}
	return Recurrence{}, "", false
}

// weekdaySetOf folds a weekday field into a set. A field without explicit
// values selects every day.
func weekdaySetOf(f Field) WeekdaySet {
	if len(f.Values) == 0 {
		return AllWeekdays
	}
	set := NoWeekdays
	for _, d := range f.Expand() {
		set = set.With(time.Weekday(d))
	}
	return set
}

// monthSetOf folds a month field into a set. Only "*" means every month;
// an explicit 1 is January alone.
func monthSetOf(f Field) MonthSet {
	if f.IsEvery() {
		return AllMonths
	}
	set := NoMonths
	for _, m := range f.Expand() {
		set = set.With(time.Month(m))
	}
	return set
}

// --- Phase B: time expansion ---

// timing is the time payload of one trigger.
type timing struct {
	tod        TimeOfDay
	repetition *Repetition
}

type expansionRule struct {
	name  string
	apply func(e Expression, input string) ([]timing, bool, error)
}

var expansionRules = []expansionRule{
	{"exact-time", func(e Expression, _ string) ([]timing, bool, error) {
		if len(e.Minute.Values) != 1 || len(e.Hour.Values) != 1 {
			return nil, false, nil
		}
		return []timing{{tod: TimeOfDay{e.Hour.Values[0], e.Minute.Values[0]}}}, true, nil
	}},
	{"cartesian", func(e Expression, _ string) ([]timing, bool, error) {
		if !isExplicitList(e.Minute) || !isExplicitList(e.Hour) {
			return nil, false, nil
		}
		out := make([]timing, 0, len(e.Hour.Values)*len(e.Minute.Values))
		for _, h := range e.Hour.Values {
			for _, m := range e.Minute.Values {
				out = append(out, timing{tod: TimeOfDay{h, m}})
			}
		}
		return out, true, nil
	}},
	{"repeating-window", expandWindow},
}

func isExplicitList(f Field) bool {
	return len(f.Values) > 1 && !f.IsRange
}

func expandWindow(e Expression, input string) ([]timing, bool, error) {
	if e.Minute.Step == 0 && e.Hour.Step == 0 {
		return nil, false, nil
	}
	mStart, mEnd := e.Minute.window()
	hStart, hEnd := e.Hour.window()
	// "*/n *" and "* *" repeat through the first hour of the day only.
	if e.Hour.IsEvery() && e.Minute.IsWildcardRepeating {
		hStart, hEnd = 0, 0
	}

	switch {
	case hStart == hEnd:
		return []timing{{
			tod: TimeOfDay{hStart, mStart},
			repetition: &Repetition{
				Interval: time.Duration(e.Minute.Step) * time.Minute,
				Duration: time.Hour,
			},
		}}, true, nil
	case mStart == mEnd:
		return []timing{{
			tod: TimeOfDay{hStart, mStart},
			repetition: &Repetition{
				Interval: time.Duration(e.Hour.Step) * time.Hour,
				Duration: time.Duration(hEnd-hStart) * time.Hour,
			},
		}}, true, nil
	default:
		return nil, true, UnsupportedExpressionError(
			"minute and hour fields both repeat over a window; only one of them may", input)
	}
}

// expandTimes applies the first matching expansion rule. No match yields
// no timings and no error.
func expandTimes(expr Expression, input string) ([]timing, string, error) {
	for _, rule := range expansionRules {
		timings, ok, err := rule.apply(expr, input)
		if err != nil {
			return nil, rule.name, err
		}
		if ok {
			return timings, rule.name, nil
		}
	}
	return nil, "", nil
}
