package ingest

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-ingest/internal/domain"
	"github.com/couchcryptid/weather-ingest/internal/refet"
)

var testMeta = domain.StationMeta{
	Country: "NL", Station: "Wageningen",
	Latitude: 51.97, Longitude: 5.67, Elevation: 7,
	AngstromA: 0.18, AngstromB: 0.55, NoDataValue: -99,
}

const testHeader = "w_date;srad;tmin;tmax;vprs_tx;wind;rain;\n"

func newTestReader(body string) *ObservationReader {
	return NewObservationReader(strings.NewReader(body), "wageningen.csv", testMeta, refet.ModelPenmanMonteith)
}

func readAll(t *testing.T, o *ObservationReader) ([]domain.DailyRecord, error) {
	t.Helper()
	var out []domain.DailyRecord
	for {
		rec, err := o.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

func TestObservationReader_ConvertsUnitsAndDerivesET(t *testing.T) {
	o := newTestReader(testHeader +
		"20150801;15.2;11.3;22.8;14.1;2.9;0.4;\n" +
		"20150802;18.4;12.1;24.5;15.3;2.1;0.0;\n")

	recs, err := readAll(t, o)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	first := recs[0]
	assert.Equal(t, time.Date(2015, 8, 1, 0, 0, 0, 0, time.UTC), first.Day)
	assert.InDelta(t, 15.2e6, first.Irrad, 1e-3)
	assert.InDelta(t, 11.3, first.TMin, 1e-9)
	assert.InDelta(t, 22.8, first.TMax, 1e-9)
	assert.InDelta(t, 14.1, first.Vap, 1e-9)
	assert.InDelta(t, 2.9, first.Wind, 1e-9)
	assert.InDelta(t, 0.04, first.Rain, 1e-9)
	assert.InDelta(t, 51.97, first.Lat, 1e-9)
	assert.InDelta(t, 5.67, first.Lon, 1e-9)
	assert.InDelta(t, 7.0, first.Elev, 1e-9)

	// mm/day from the ET formulas, stored in cm/day.
	assert.InDelta(t, 0.3678774, first.E0, 1e-6)
	assert.InDelta(t, 0.3276874, first.ES0, 1e-6)
	assert.InDelta(t, 0.3367490, first.ET0, 1e-6)

	assert.InDelta(t, 0.4099273, recs[1].E0, 1e-6)
	assert.InDelta(t, 0.3601057, recs[1].ES0, 1e-6)
	assert.InDelta(t, 0.3646483, recs[1].ET0, 1e-6)
	assert.Zero(t, recs[1].Rain)
}

func TestObservationReader_PenmanModel(t *testing.T) {
	o := NewObservationReader(strings.NewReader(testHeader+"20150801;15.2;11.3;22.8;14.1;2.9;0.4;\n"),
		"wageningen.csv", testMeta, refet.ModelPenman)

	rec, err := o.Read()
	require.NoError(t, err)
	assert.InDelta(t, 0.3119135, rec.ET0, 1e-6)
}

func TestObservationReader_AlternativeSpellingsAndExtraColumns(t *testing.T) {
	o := newTestReader("station;DAY;RADIATION;TEMPERATURE_MIN;TEMPERATURE_MAX;VAPOURPRESSURE;WINDSPEED;PRECIPITATION;\n" +
		"WAG;20150801;15.2;11.3;22.8;14.1;2.9;0.4;\n")

	recs, err := readAll(t, o)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.InDelta(t, 22.8, recs[0].TMax, 1e-9)
}

func TestObservationReader_HeaderMissingField(t *testing.T) {
	o := newTestReader("w_date;srad;tmin;tmax;vprs_tx;wind;\n20150801;15.2;11.3;22.8;14.1;2.9;\n")

	_, err := o.Read()
	require.ErrorIs(t, err, domain.ErrMissingField)

	var rowErr *domain.RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 3, rowErr.Line)
	assert.Equal(t, domain.FieldRain, rowErr.Field)
}

func TestObservationReader_DuplicateColumn(t *testing.T) {
	o := newTestReader("w_date;DAY;srad;tmin;tmax;vprs_tx;wind;rain;\n")
	_, err := o.Read()
	assert.ErrorIs(t, err, domain.ErrDuplicateColumn)
}

func TestObservationReader_ConversionFailureNamesFieldAndLine(t *testing.T) {
	o := newTestReader(testHeader +
		"20150801;15.2;11.3;22.8;14.1;2.9;0.4;\n" +
		"20150802;18.4;12.1;hot;15.3;2.1;0.0;\n" +
		"20150803;18.4;12.1;24.5;15.3;2.1;0.0;\n")

	recs, err := readAll(t, o)
	require.Error(t, err)
	assert.Len(t, recs, 1)

	var rowErr *domain.RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 5, rowErr.Line)
	assert.Equal(t, domain.FieldTMax, rowErr.Field)
	assert.Equal(t, "wageningen.csv", rowErr.Path)

	var convErr *domain.ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "hot", convErr.Value)

	// The reader stays failed.
	_, again := o.Read()
	assert.Equal(t, err, again)
}

func TestObservationReader_BadDate(t *testing.T) {
	o := newTestReader(testHeader + "2015-08-01;15.2;11.3;22.8;14.1;2.9;0.4;\n")
	_, err := o.Read()

	var rowErr *domain.RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, domain.FieldDay, rowErr.Field)
}

func TestObservationReader_ShortRowMissingField(t *testing.T) {
	o := newTestReader(testHeader + "20150801;15.2;11.3;22.8;14.1;\n")

	_, err := o.Read()
	require.ErrorIs(t, err, domain.ErrMissingField)

	var rowErr *domain.RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 4, rowErr.Line)
}

func TestObservationReader_EmptyCellIsConversionError(t *testing.T) {
	o := newTestReader(testHeader + "20150801;15.2;11.3;22.8;14.1;2.9;;\n")
	_, err := o.Read()

	var convErr *domain.ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, domain.FieldRain, convErr.Field)
}

func TestObservationReader_NoHeader(t *testing.T) {
	_, err := newTestReader("").Read()
	var rowErr *domain.RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 3, rowErr.Line)
}

func TestObservationReader_HeaderOnlyIsEOF(t *testing.T) {
	o := newTestReader(testHeader)
	_, err := o.Read()
	assert.ErrorIs(t, err, io.EOF)
	_, err = o.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestObservationReader_QuotedCells(t *testing.T) {
	o := newTestReader(testHeader + `"20150801";"15.2";11.3;22.8;14.1;2.9;0.4;` + "\n")
	rec, err := o.Read()
	require.NoError(t, err)
	assert.InDelta(t, 15.2e6, rec.Irrad, 1e-3)
}
