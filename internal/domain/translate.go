package domain

import (
	"fmt"
)

// spellings lists, per canonical field, the header cells station files use for it.
// A spelling must belong to exactly one field.
var spellings = []struct {
	field     Field
	spellings []string
}{
	{FieldDay, []string{"w_date", "DAY"}},
	{FieldIrrad, []string{"srad", "RADIATION"}},
	{FieldTMin, []string{"tmin", "TEMPERATURE_MIN"}},
	{FieldTMax, []string{"tmax", "TEMPERATURE_MAX"}},
	{FieldVap, []string{"vprs_tx", "VAPOURPRESSURE"}},
	{FieldWind, []string{"wind", "WINDSPEED"}},
	{FieldRain, []string{"rain", "PRECIPITATION"}},
}

// columnIndex is the reverse lookup built once from spellings.
var columnIndex = mustBuildColumnIndex()

func buildColumnIndex() (map[string]Field, error) {
	index := make(map[string]Field)
	for _, entry := range spellings {
		for _, s := range entry.spellings {
			if prev, ok := index[s]; ok {
				return nil, fmt.Errorf("spelling %q claimed by %s and %s", s, prev, entry.field)
			}
			index[s] = entry.field
		}
	}
	return index, nil
}

func mustBuildColumnIndex() map[string]Field {
	index, err := buildColumnIndex()
	if err != nil {
		panic(err)
	}
	return index
}

// Translate resolves a header cell to its canonical field, or FieldUnknown.
// Matching is exact and case-sensitive.
func Translate(cell string) Field {
	return columnIndex[cell]
}

// Spellings returns the accepted header spellings for f.
func Spellings(f Field) []string {
	for _, entry := range spellings {
		if entry.field == f {
			out := make([]string, len(entry.spellings))
			copy(out, entry.spellings)
			return out
		}
	}
	return nil
}

// HeaderMap maps column positions to canonical fields. Positions without a
// recognized field are absent.
type HeaderMap map[int]Field

// NewHeaderMap resolves header cells. The caller strips the trailing empty cell
// first. Unrecognized cells are dropped; a field claimed by two columns or a field
// without a conversion is an error.
func NewHeaderMap(cells []string) (HeaderMap, error) {
	hm := make(HeaderMap, len(cells))
	seen := make(map[Field]int, len(cells))
	for i, cell := range cells {
		f := Translate(cell)
		if f == FieldUnknown {
			continue
		}
		if !HasConversion(f) {
			return nil, fmt.Errorf("%w: %s", ErrNoConversion, f)
		}
		if prev, ok := seen[f]; ok {
			return nil, fmt.Errorf("%w: %s in columns %d and %d", ErrDuplicateColumn, f, prev+1, i+1)
		}
		seen[f] = i
		hm[i] = f
	}
	return hm, nil
}

// Missing returns the observed fields the header does not provide, in canonical order.
func (h HeaderMap) Missing() []Field {
	have := make(map[Field]bool, len(h))
	for _, f := range h {
		have[f] = true
	}
	var missing []Field
	for _, f := range ObservedFields {
		if !have[f] {
			missing = append(missing, f)
		}
	}
	return missing
}
