package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/couchcryptid/weather-ingest/internal/domain"
	"github.com/couchcryptid/weather-ingest/internal/refet"
)

// preambleLines is the number of lines consumed by ReadMeta before the header row.
const preambleLines = 2

// ObservationReader streams daily records from the rows that follow the preamble.
// It makes a single pass: once Read has returned io.EOF or an error, every later
// call returns the same result.
type ObservationReader struct {
	csv    *csv.Reader
	meta   domain.StationMeta
	model  refet.Model
	path   string
	header domain.HeaderMap
	err    error
}

// NewObservationReader reads rows from r, which must be positioned at the header row.
func NewObservationReader(r io.Reader, path string, meta domain.StationMeta, model refet.Model) *ObservationReader {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	return &ObservationReader{csv: cr, meta: meta, model: model, path: path}
}

// Read returns the next daily record, or io.EOF after the last row.
func (o *ObservationReader) Read() (domain.DailyRecord, error) {
	if o.err != nil {
		return domain.DailyRecord{}, o.err
	}
	rec, err := o.next()
	if err != nil {
		o.err = err
	}
	return rec, err
}

func (o *ObservationReader) next() (domain.DailyRecord, error) {
	if o.header == nil {
		if err := o.readHeader(); err != nil {
			return domain.DailyRecord{}, err
		}
	}

	row, err := o.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return domain.DailyRecord{}, io.EOF
		}
		return domain.DailyRecord{}, &domain.RowError{Path: o.path, Line: errLine(err), Err: err}
	}
	return o.parseRow(dropTrailing(row), o.Line())
}

// readHeader resolves the header row once. A header missing an observed field is
// rejected here, since every data row would fail on it.
func (o *ObservationReader) readHeader() error {
	row, err := o.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &domain.RowError{Path: o.path, Line: preambleLines + 1, Err: errors.New("missing header row")}
		}
		return &domain.RowError{Path: o.path, Line: errLine(err), Err: err}
	}
	header, err := domain.NewHeaderMap(dropTrailing(row))
	if err != nil {
		return &domain.RowError{Path: o.path, Line: o.Line(), Err: err}
	}
	if missing := header.Missing(); len(missing) > 0 {
		return &domain.RowError{
			Path:  o.path,
			Line:  o.Line(),
			Field: missing[0],
			Err:   fmt.Errorf("%w: header has no column for %v", domain.ErrMissingField, missing),
		}
	}
	o.header = header
	return nil
}

func (o *ObservationReader) parseRow(row []string, line int) (domain.DailyRecord, error) {
	rec := domain.DailyRecord{
		Lat:  o.meta.Latitude,
		Lon:  o.meta.Longitude,
		Elev: o.meta.Elevation,
	}

	present := make(map[domain.Field]bool, len(o.header))
	for pos, field := range o.header {
		if pos >= len(row) {
			continue
		}
		if err := domain.Convert(field, row[pos], &rec); err != nil {
			return domain.DailyRecord{}, &domain.RowError{Path: o.path, Line: line, Field: field, Err: err}
		}
		present[field] = true
	}
	for _, f := range domain.ObservedFields {
		if !present[f] {
			return domain.DailyRecord{}, &domain.RowError{Path: o.path, Line: line, Field: f, Err: domain.ErrMissingField}
		}
	}

	et, err := refet.Reference(refet.Input{
		Day:       rec.Day,
		Latitude:  o.meta.Latitude,
		Elevation: o.meta.Elevation,
		TMin:      rec.TMin,
		TMax:      rec.TMax,
		Irrad:     rec.Irrad,
		Vap:       rec.Vap,
		Wind:      rec.Wind,
		AngstromA: o.meta.AngstromA,
		AngstromB: o.meta.AngstromB,
	}, o.model)
	if err != nil {
		return domain.DailyRecord{}, &domain.RowError{Path: o.path, Line: line, Err: fmt.Errorf("reference ET: %w", err)}
	}
	// mm/day to cm/day
	rec.E0 = et.E0 / 10
	rec.ES0 = et.ES0 / 10
	rec.ET0 = et.ET0 / 10

	return rec, nil
}

// Line returns the 1-based file line of the row last returned by Read.
func (o *ObservationReader) Line() int {
	if o.header == nil {
		return preambleLines + 1
	}
	l, _ := o.csv.FieldPos(0)
	return l + preambleLines
}

// errLine extracts the file line from a csv parse error.
func errLine(err error) int {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return pe.StartLine + preambleLines
	}
	return 0
}

// dropTrailing removes the final cell produced by the trailing delimiter.
func dropTrailing(row []string) []string {
	if len(row) == 0 {
		return row
	}
	return row[:len(row)-1]
}
