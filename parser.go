package crontrigger

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2"
)

// ParseExpression parses a five-field cron expression. Parsing is
// all-or-nothing: the first malformed field aborts with a FormatError.
func ParseExpression(input string) (Expression, error) {
	tokens := splitFields(input)
	if len(tokens) != 5 {
		return Expression{}, &CronError{
			Kind:    ErrorKindFormat,
			Message: fmt.Sprintf("expected 5 fields (minute, hour, day-of-month, month, day-of-week), got %d", len(tokens)),
			Span:    &Span{0, len(input)},
			Input:   input,
		}
	}

	var fields [5]Field
	for i, typ := range fieldOrder {
		f, err := parseToken(tokens[i], typ, input)
		if err != nil {
			return Expression{}, err
		}
		fields[i] = f
	}
	return Expression{
		Minute:  fields[0],
		Hour:    fields[1],
		Day:     fields[2],
		Month:   fields[3],
		Weekday: fields[4],
	}, nil
}

// ParseField parses a single cron field of the given type.
func ParseField(token string, typ FieldType) (Field, error) {
	return parseToken(fieldToken{Text: token, Span: Span{0, len(token)}}, typ, token)
}

func parseToken(tok fieldToken, typ FieldType, input string) (Field, error) {
	p := &fieldNormalizer{typ: typ, tok: tok, input: input}
	if tok.Text == "" {
		return Field{}, p.error("value cannot be empty")
	}

	g, err := fieldParser.ParseString("", tok.Text)
	if err != nil {
		var perr participle.Error
		if errors.As(err, &perr) {
			offset := tok.Span.Start + perr.Position().Offset
			return Field{}, FormatError(typ, fmt.Sprintf("invalid syntax %q", tok.Text), Span{offset, tok.Span.End}, input)
		}
		return Field{}, p.error(fmt.Sprintf("invalid syntax %q", tok.Text))
	}
	return p.normalize(g)
}

// fieldNormalizer turns the raw grammar of one field into a Field.
type fieldNormalizer struct {
	typ   FieldType
	tok   fieldToken
	input string
}

func (p *fieldNormalizer) error(message string) error {
	return FormatError(p.typ, message, p.tok.Span, p.input)
}

func (p *fieldNormalizer) normalize(g *fieldGrammar) (Field, error) {
	f := Field{Type: p.typ, Span: p.tok.Span}

	switch {
	case len(g.Rest) > 0:
		if g.Step != nil {
			return Field{}, p.error("list items must be plain numbers")
		}
		f.Values = make([]int, 0, len(g.Rest)+1)
		for _, s := range append([]string{*g.First}, g.Rest...) {
			v, err := p.number(s)
			if err != nil {
				return Field{}, err
			}
			f.Values = append(f.Values, v)
		}

	case g.Wildcard:
		step, err := p.step(g.Step)
		if err != nil {
			return Field{}, err
		}
		f.IsWildcardRepeating = true
		f.Step = step
		return f, nil

	case g.Last != nil:
		first, err := p.number(*g.First)
		if err != nil {
			return Field{}, err
		}
		last, err := p.number(*g.Last)
		if err != nil {
			return Field{}, err
		}
		if first >= last {
			return Field{}, p.error(fmt.Sprintf("range must begin with a lower number (got %d-%d)", first, last))
		}
		step, err := p.step(g.Step)
		if err != nil {
			return Field{}, err
		}
		f.IsRange = true
		f.Values = []int{first, last}
		f.Step = step

	default:
		// A step on a single value selects nothing more than the value.
		v, err := p.number(*g.First)
		if err != nil {
			return Field{}, err
		}
		f.Values = []int{v}
	}

	if err := p.validate(f.Values); err != nil {
		return Field{}, err
	}
	return f, nil
}

func (p *fieldNormalizer) step(text *string) (int, error) {
	if text == nil {
		return 1, nil
	}
	step, err := p.number(*text)
	if err != nil {
		return 0, err
	}
	if step < 1 {
		return 0, p.error("step must be positive")
	}
	return step, nil
}

func (p *fieldNormalizer) number(text string) (int, error) {
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, p.error(fmt.Sprintf("invalid number %q", text))
	}
	return n, nil
}

func (p *fieldNormalizer) validate(values []int) error {
	lo, hi := p.typ.Domain()
	for _, v := range values {
		if v < lo || v > hi {
			return p.error(fmt.Sprintf("value %d out of range %d-%d", v, lo, hi))
		}
	}
	return nil
}
