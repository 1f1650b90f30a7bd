package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		cell string
		want Field
	}{
		{"w_date", FieldDay},
		{"DAY", FieldDay},
		{"srad", FieldIrrad},
		{"RADIATION", FieldIrrad},
		{"tmin", FieldTMin},
		{"TEMPERATURE_MIN", FieldTMin},
		{"tmax", FieldTMax},
		{"TEMPERATURE_MAX", FieldTMax},
		{"vprs_tx", FieldVap},
		{"VAPOURPRESSURE", FieldVap},
		{"wind", FieldWind},
		{"WINDSPEED", FieldWind},
		{"rain", FieldRain},
		{"PRECIPITATION", FieldRain},
		{"snow_depth", FieldUnknown},
		{"TMAX ", FieldUnknown},
		{"Tmax", FieldUnknown},
		{"", FieldUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			assert.Equal(t, tt.want, Translate(tt.cell))
		})
	}
}

func TestSpellingTableHasNoCollisions(t *testing.T) {
	index, err := buildColumnIndex()
	require.NoError(t, err)

	total := 0
	for _, entry := range spellings {
		total += len(entry.spellings)
	}
	assert.Len(t, index, total)
}

func TestBuildColumnIndex_DetectsCollision(t *testing.T) {
	saved := spellings
	t.Cleanup(func() { spellings = saved })

	spellings = append(spellings[:0:0], saved...)
	spellings = append(spellings, struct {
		field     Field
		spellings []string
	}{FieldTMin, []string{"tmax"}})

	_, err := buildColumnIndex()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"tmax"`)
}

func TestSpellings_ReturnsCopy(t *testing.T) {
	s := Spellings(FieldDay)
	require.Equal(t, []string{"w_date", "DAY"}, s)
	s[0] = "changed"
	assert.Equal(t, FieldDay, Translate("w_date"))
	assert.Nil(t, Spellings(FieldE0))
}

func TestNewHeaderMap(t *testing.T) {
	t.Run("drops unrecognized columns", func(t *testing.T) {
		hm, err := NewHeaderMap([]string{"w_date", "station_id", "srad", "tmin", "tmax", "vprs_tx", "wind", "rain"})
		require.NoError(t, err)

		assert.Equal(t, HeaderMap{
			0: FieldDay, 2: FieldIrrad, 3: FieldTMin, 4: FieldTMax, 5: FieldVap, 6: FieldWind, 7: FieldRain,
		}, hm)
		assert.Empty(t, hm.Missing())
	})

	t.Run("mixed spellings", func(t *testing.T) {
		hm, err := NewHeaderMap([]string{"DAY", "RADIATION", "tmin", "TEMPERATURE_MAX"})
		require.NoError(t, err)
		assert.Equal(t, []Field{FieldVap, FieldWind, FieldRain}, hm.Missing())
	})

	t.Run("duplicate canonical field", func(t *testing.T) {
		_, err := NewHeaderMap([]string{"w_date", "tmax", "TEMPERATURE_MAX"})
		assert.ErrorIs(t, err, ErrDuplicateColumn)
	})

	t.Run("empty header", func(t *testing.T) {
		hm, err := NewHeaderMap(nil)
		require.NoError(t, err)
		assert.Equal(t, ObservedFields, hm.Missing())
	})
}
