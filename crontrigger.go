// Package crontrigger translates five-field cron expressions into
// calendar-based trigger descriptions for a task scheduler.
//
// A cron expression is mapped onto the smallest set of triggers that
// describes it:
//   - a daily recurrence ("* * */2"), a monthly recurrence on fixed days
//     ("1,15 * *") or a weekday recurrence ("* * 1-5"),
//   - fired at one time of day, at each listed hour/minute pair, or
//     repeatedly across an intraday window ("*/15 9", "0 9-17/2").
//
// Only numeric tokens are accepted; names, seconds, years and the
// L, W and # modifiers are rejected.
//
// Example usage:
//
//	triggers, err := crontrigger.CreateTriggers("0 9 * * 1,3,5")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, t := range triggers {
//	    fmt.Println(t)
//	}
package crontrigger

import (
	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
)

var defaultTranslator = NewTranslator(clock.New(), zerolog.Nop())

// CreateTriggers translates a cron expression into triggers that start
// today, in the local time zone.
//
// The error is a *CronError matching ErrFormat when the expression is
// malformed and ErrUnsupported when no trigger shape can express it.
func CreateTriggers(input string) ([]Trigger, error) {
	return defaultTranslator.CreateTriggers(input)
}

// MustCreateTriggers is like CreateTriggers but panics on error.
func MustCreateTriggers(input string) []Trigger {
	triggers, err := CreateTriggers(input)
	if err != nil {
		panic(err)
	}
	return triggers
}

// Validate checks if an input string is a cron expression that can be
// translated into triggers.
func Validate(input string) bool {
	_, err := CreateTriggers(input)
	return err == nil
}
