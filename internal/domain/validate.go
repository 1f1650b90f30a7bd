package domain

import (
	"fmt"
	"math"
)

type bounds struct{ min, max float64 }

// plausibleRanges are the limits any weather source is held to, in canonical units.
var plausibleRanges = map[Field]bounds{
	FieldLat:   {-90, 90},
	FieldLon:   {-180, 180},
	FieldElev:  {-300, 6000},
	FieldIrrad: {0, 40e6},
	FieldTMin:  {-50, 60},
	FieldTMax:  {-50, 60},
	FieldVap:   {0.06, 199.3},
	FieldRain:  {0, 25},
	FieldE0:    {0, 2.5},
	FieldES0:   {0, 2.5},
	FieldET0:   {0, 2.5},
	FieldWind:  {0, 100},
}

// checkedFields fixes the order in which CheckRecord reports problems.
var checkedFields = []Field{
	FieldLat, FieldLon, FieldElev,
	FieldIrrad, FieldTMin, FieldTMax, FieldVap, FieldWind, FieldRain,
	FieldE0, FieldES0, FieldET0,
}

// CheckRange returns a *RangeError when v is NaN or outside the plausible range for f.
// Fields without a registered range always pass.
func CheckRange(f Field, v float64) error {
	b, ok := plausibleRanges[f]
	if !ok {
		return nil
	}
	if math.IsNaN(v) || v < b.min || v > b.max {
		return &RangeError{Field: f, Value: v, Min: b.min, Max: b.max}
	}
	return nil
}

// CheckRecord validates every numeric field of rec and requires a day.
func CheckRecord(rec DailyRecord) error {
	if rec.Day.IsZero() {
		return fmt.Errorf("%w: %s", ErrMissingField, FieldDay)
	}
	for _, f := range checkedFields {
		v, _ := rec.Value(f)
		if err := CheckRange(f, v); err != nil {
			return err
		}
	}
	return nil
}

// Angstrom coefficient limits.
const (
	minAngstromA   = 0.1
	maxAngstromA   = 0.4
	minAngstromB   = 0.3
	maxAngstromB   = 0.7
	minAngstromSum = 0.6
	maxAngstromSum = 0.9
)

// CheckAngstromAB validates the Angstrom coefficients and returns their absolute values.
func CheckAngstromAB(a, b float64) (float64, float64, error) {
	absA, absB := math.Abs(a), math.Abs(b)
	if absA < minAngstromA || absA > maxAngstromA {
		return 0, 0, fmt.Errorf("%w: A=%g not in [%g, %g]", ErrAngstromRange, a, minAngstromA, maxAngstromA)
	}
	if absB < minAngstromB || absB > maxAngstromB {
		return 0, 0, fmt.Errorf("%w: B=%g not in [%g, %g]", ErrAngstromRange, b, minAngstromB, maxAngstromB)
	}
	if sum := absA + absB; sum < minAngstromSum || sum > maxAngstromSum {
		return 0, 0, fmt.Errorf("%w: A+B=%g not in [%g, %g]", ErrAngstromRange, sum, minAngstromSum, maxAngstromSum)
	}
	return absA, absB, nil
}
