// Package render encodes synthesized triggers as records for a
// scheduler-registration component.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/prasrvenkat/crontrigger"
)

// Format is an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatCBOR}

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2), so the same
// triggers always produce the same bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("render: CBOR encoder initialization failed: " + err.Error())
	}
}

// ParseFormat returns the Format named s.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// Record is the flat, serializable form of one trigger. The CBOR encoder
// falls back to the json tags.
type Record struct {
	Recurrence   string            `json:"recurrence" yaml:"recurrence"`
	DaysInterval int               `json:"days_interval,omitempty" yaml:"days_interval,omitempty"`
	DaysOfMonth  []int             `json:"days_of_month,omitempty" yaml:"days_of_month,omitempty,flow"`
	Weekdays     []string          `json:"weekdays,omitempty" yaml:"weekdays,omitempty,flow"`
	Months       []string          `json:"months,omitempty" yaml:"months,omitempty,flow"`
	Weeks        []string          `json:"weeks,omitempty" yaml:"weeks,omitempty,flow"`
	Start        string            `json:"start" yaml:"start"`
	TimeOfDay    string            `json:"time_of_day" yaml:"time_of_day"`
	Repetition   *RepetitionRecord `json:"repetition,omitempty" yaml:"repetition,omitempty"`
}

// RepetitionRecord holds ISO 8601 durations, for example "PT15M".
type RepetitionRecord struct {
	Interval string `json:"interval" yaml:"interval"`
	Duration string `json:"duration" yaml:"duration"`
}

// NewRecord flattens a trigger.
func NewRecord(t crontrigger.Trigger) Record {
	r := t.Recurrence
	rec := Record{
		Recurrence: r.Kind.String(),
		Start:      t.Start.Format(time.RFC3339),
		TimeOfDay:  t.TimeOfDay().String(),
	}
	switch r.Kind {
	case crontrigger.RecurrenceDaily:
		rec.DaysInterval = r.DaysInterval
	case crontrigger.RecurrenceMonthly:
		rec.DaysOfMonth = r.DaysOfMonth
		rec.Months = monthNames(r.Months)
	case crontrigger.RecurrenceMonthlyByWeekday:
		rec.Weekdays = weekdayNames(r.Weekdays)
		rec.Months = monthNames(r.Months)
		rec.Weeks = weekNames(r.Weeks)
	}
	if t.Repetition != nil {
		rec.Repetition = &RepetitionRecord{
			Interval: isoDuration(t.Repetition.Interval),
			Duration: isoDuration(t.Repetition.Duration),
		}
	}
	return rec
}

// Records flattens triggers. The result is never nil.
func Records(triggers []crontrigger.Trigger) []Record {
	out := make([]Record, 0, len(triggers))
	for _, t := range triggers {
		out = append(out, NewRecord(t))
	}
	return out
}

// Write encodes triggers to w in the given format.
func Write(w io.Writer, format Format, triggers []crontrigger.Trigger) error {
	switch format {
	case FormatText:
		for _, t := range triggers {
			if _, err := fmt.Fprintln(w, t); err != nil {
				return err
			}
		}
		return nil

	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(Records(triggers))

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(Records(triggers)); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()

	case FormatCBOR:
		return encMode.NewEncoder(w).Encode(Records(triggers))

	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func weekdayNames(s crontrigger.WeekdaySet) []string {
	var out []string
	for _, d := range s.Weekdays() {
		out = append(out, strings.ToLower(d.String()))
	}
	return out
}

func monthNames(s crontrigger.MonthSet) []string {
	var out []string
	for _, m := range s.Months() {
		out = append(out, strings.ToLower(m.String()))
	}
	return out
}

func weekNames(w crontrigger.WhichWeek) []string {
	names := []struct {
		week crontrigger.WhichWeek
		name string
	}{
		{crontrigger.FirstWeek, "first"},
		{crontrigger.SecondWeek, "second"},
		{crontrigger.ThirdWeek, "third"},
		{crontrigger.FourthWeek, "fourth"},
		{crontrigger.LastWeek, "last"},
	}
	var out []string
	for _, n := range names {
		if w&n.week != 0 {
			out = append(out, n.name)
		}
	}
	return out
}

// isoDuration renders d in whole minutes as an ISO 8601 duration.
func isoDuration(d time.Duration) string {
	if d <= 0 {
		return "PT0M"
	}
	h, m := int(d/time.Hour), int(d%time.Hour/time.Minute)
	var sb strings.Builder
	sb.WriteString("PT")
	if h > 0 {
		fmt.Fprintf(&sb, "%dH", h)
	}
	if m > 0 {
		fmt.Fprintf(&sb, "%dM", m)
	}
	return sb.String()
}
