package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the fixed day format of the w_date column.
const DateLayout = "20060102"

// NoConversion parses a value that is already in its canonical unit.
func NoConversion(raw string) (float64, error) {
	return parseFloat(raw)
}

// MJToJ converts megajoules to joules.
func MJToJ(raw string) (float64, error) {
	v, err := parseFloat(raw)
	if err != nil {
		return 0, err
	}
	return v * 1_000_000, nil
}

// MMToCM converts millimetres to centimetres.
func MMToCM(raw string) (float64, error) {
	v, err := parseFloat(raw)
	if err != nil {
		return 0, err
	}
	return v / 10, nil
}

// parseFloat accepts cells padded with whitespace.
func parseFloat(raw string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}

// ParseDate parses an 8-digit YYYYMMDD day.
func ParseDate(raw string) (time.Time, error) {
	if len(raw) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("want %d digits, got %d", len(DateLayout), len(raw))
	}
	return time.Parse(DateLayout, raw)
}

// conversion applies a converted raw cell to a record.
type conversion func(rec *DailyRecord, raw string) error

func numeric(parse func(string) (float64, error), set func(*DailyRecord, float64)) conversion {
	return func(rec *DailyRecord, raw string) error {
		v, err := parse(raw)
		if err != nil {
			return err
		}
		set(rec, v)
		return nil
	}
}

var conversions = map[Field]conversion{
	FieldTMax:  numeric(NoConversion, func(r *DailyRecord, v float64) { r.TMax = v }),
	FieldTMin:  numeric(NoConversion, func(r *DailyRecord, v float64) { r.TMin = v }),
	FieldIrrad: numeric(MJToJ, func(r *DailyRecord, v float64) { r.Irrad = v }),
	FieldVap:   numeric(NoConversion, func(r *DailyRecord, v float64) { r.Vap = v }),
	FieldWind:  numeric(NoConversion, func(r *DailyRecord, v float64) { r.Wind = v }),
	FieldRain:  numeric(MMToCM, func(r *DailyRecord, v float64) { r.Rain = v }),
	FieldDay: func(r *DailyRecord, raw string) error {
		day, err := ParseDate(raw)
		if err != nil {
			return err
		}
		r.Day = day
		return nil
	},
}

// HasConversion reports whether a conversion is registered for f.
func HasConversion(f Field) bool {
	_, ok := conversions[f]
	return ok
}

// Convert parses raw for field f and stores the canonical value in rec.
func Convert(f Field, raw string, rec *DailyRecord) error {
	conv, ok := conversions[f]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoConversion, f)
	}
	if err := conv(rec, raw); err != nil {
		return &ConversionError{Field: f, Value: raw, Err: err}
	}
	return nil
}
