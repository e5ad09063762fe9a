package crontrigger

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind represents the type of error that occurred.
type ErrorKind string

const (
	ErrorKindFormat      ErrorKind = "format"
	ErrorKindUnsupported ErrorKind = "unsupported"
)

// Sentinels for errors.Is. Every *CronError matches exactly one of them.
var (
	ErrFormat      = errors.New("malformed cron expression")
	ErrUnsupported = errors.New("unsupported cron expression")
)

// Span represents a range of byte positions in the input.
type Span struct {
	Start int
	End   int
}

// CronError represents an error that occurred while parsing an expression
// or synthesizing triggers from it.
type CronError struct {
	Kind    ErrorKind
	Message string
	// Field is the field that failed, or zero when the error is not tied to one.
	Field FieldType
	Span  *Span
	Input string
}

// Error implements the error interface.
func (e *CronError) Error() string {
	if e.Field != 0 {
		return fmt.Sprintf("%s field: %s", e.Field, e.Message)
	}
	return e.Message
}

// Is reports whether target is the sentinel for this error's kind.
func (e *CronError) Is(target error) bool {
	switch e.Kind {
	case ErrorKindFormat:
		return target == ErrFormat
	case ErrorKindUnsupported:
		return target == ErrUnsupported
	}
	return false
}

// FormatError creates a new format error for a field.
func FormatError(field FieldType, message string, span Span, input string) *CronError {
	return &CronError{
		Kind:    ErrorKindFormat,
		Message: message,
		Field:   field,
		Span:    &span,
		Input:   input,
	}
}

// UnsupportedExpressionError creates an error for a well-formed expression
// that maps onto no supported trigger shape.
func UnsupportedExpressionError(message string, input string) *CronError {
	return &CronError{
		Kind:    ErrorKindUnsupported,
		Message: message,
		Input:   input,
	}
}

// DisplayRich formats a rich error message with an underline below the
// offending part of the input.
func (e *CronError) DisplayRich() string {
	if e.Kind == ErrorKindFormat && e.Span != nil && e.Input != "" {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("error: %s\n", e.Error()))
		sb.WriteString(fmt.Sprintf("  %s\n", e.Input))

		padding := strings.Repeat(" ", e.Span.Start+2)
		underlineLen := e.Span.End - e.Span.Start
		if underlineLen < 1 {
			underlineLen = 1
		}
		sb.WriteString(padding)
		sb.WriteString(strings.Repeat("^", underlineLen))
		return sb.String()
	}

	return fmt.Sprintf("error: %s", e.Error())
}
