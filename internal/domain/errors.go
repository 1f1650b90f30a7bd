package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceNotFound is returned when the weather file does not exist.
	ErrSourceNotFound = errors.New("weather source not found")

	// ErrMissingField is returned when a data row lacks a required field.
	ErrMissingField = errors.New("missing required field")

	// ErrDuplicateDate is returned when two rows describe the same calendar day.
	ErrDuplicateDate = errors.New("duplicate date")

	// ErrDuplicateColumn is returned when two header cells resolve to the same field.
	ErrDuplicateColumn = errors.New("duplicate column")

	// ErrNoConversion is returned when a header field has no registered conversion.
	ErrNoConversion = errors.New("no conversion registered for field")

	// ErrAngstromRange is returned when Angstrom coefficients are implausible.
	ErrAngstromRange = errors.New("angstrom coefficient out of range")

	// ErrNoData is returned by lookups for a day outside the series.
	ErrNoData = errors.New("no weather data for day")
)

// MetaFormatError reports a preamble that cannot be trusted.
type MetaFormatError struct {
	Path  string
	Token string
	Err   error
}

func (e *MetaFormatError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("malformed site line in %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("malformed site line in %s: token %q: %v", e.Path, e.Token, e.Err)
}

func (e *MetaFormatError) Unwrap() error { return e.Err }

// ConversionError reports a raw cell that could not be converted to its unit.
type ConversionError struct {
	Field Field
	Value string
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %s value %q: %v", e.Field, e.Value, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// RangeError reports a converted value outside its plausible range.
type RangeError struct {
	Field Field
	Value float64
	Min   float64
	Max   float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s value %g outside [%g, %g]", e.Field, e.Value, e.Min, e.Max)
}

// RowError locates a failure in the source file. Line is 1-based and counts the preamble.
type RowError struct {
	Path  string
	Line  int
	Field Field
	Err   error
}

func (e *RowError) Error() string {
	if e.Field == FieldUnknown {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: field %s: %v", e.Path, e.Line, e.Field, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
