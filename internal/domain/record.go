package domain

import (
	"fmt"
	"time"
)

// Field is the canonical identifier of a meteorological quantity.
type Field string

// Canonical fields. FieldUnknown marks a header cell that matched no spelling.
const (
	FieldUnknown Field = ""
	FieldDay     Field = "DAY"
	FieldIrrad   Field = "IRRAD"
	FieldTMin    Field = "TMIN"
	FieldTMax    Field = "TMAX"
	FieldVap     Field = "VAP"
	FieldWind    Field = "WIND"
	FieldRain    Field = "RAIN"

	// Derived reference evapotranspiration and site fields.
	FieldE0   Field = "E0"
	FieldES0  Field = "ES0"
	FieldET0  Field = "ET0"
	FieldLat  Field = "LAT"
	FieldLon  Field = "LON"
	FieldElev Field = "ELEV"
)

// ObservedFields lists the fields every data row must provide.
var ObservedFields = []Field{FieldDay, FieldIrrad, FieldTMin, FieldTMax, FieldVap, FieldWind, FieldRain}

// StationMeta describes the station a file was recorded at. It is read once from the
// preamble and shared by every record of that file.
type StationMeta struct {
	Country     string  `json:"country"`
	Station     string  `json:"station"`
	Description string  `json:"description"`
	Source      string  `json:"source"`
	Contact     string  `json:"contact"`
	Longitude   float64 `json:"longitude"`
	Latitude    float64 `json:"latitude"`
	Elevation   float64 `json:"elevation"`
	AngstromA   float64 `json:"angstrom_a"`
	AngstromB   float64 `json:"angstrom_b"`
	NoDataValue float64 `json:"nodata_value"`
}

// DescriptionLines renders the station summary shown to users of the series.
func (m StationMeta) DescriptionLines() []string {
	return []string{
		"Weather data for:",
		"Country: " + m.Country,
		"Station: " + m.Station,
		"Description: " + m.Description,
		"Source: " + m.Source,
		"Contact: " + m.Contact,
	}
}

// DailyRecord is one day of weather in canonical units.
type DailyRecord struct {
	Day  time.Time `json:"day"`
	Lat  float64   `json:"lat"`
	Lon  float64   `json:"lon"`
	Elev float64   `json:"elev"`

	TMin  float64 `json:"tmin"`  // C
	TMax  float64 `json:"tmax"`  // C
	Irrad float64 `json:"irrad"` // J/m2/day
	Vap   float64 `json:"vap"`   // hPa
	Wind  float64 `json:"wind"`  // m/s
	Rain  float64 `json:"rain"`  // cm/day

	E0  float64 `json:"e0"`  // open water, cm/day
	ES0 float64 `json:"es0"` // bare soil, cm/day
	ET0 float64 `json:"et0"` // reference crop, cm/day
}

// Value returns the numeric value stored for f. DAY is not numeric and reports false.
func (r DailyRecord) Value(f Field) (float64, bool) {
	switch f {
	case FieldLat:
		return r.Lat, true
	case FieldLon:
		return r.Lon, true
	case FieldElev:
		return r.Elev, true
	case FieldTMin:
		return r.TMin, true
	case FieldTMax:
		return r.TMax, true
	case FieldIrrad:
		return r.Irrad, true
	case FieldVap:
		return r.Vap, true
	case FieldWind:
		return r.Wind, true
	case FieldRain:
		return r.Rain, true
	case FieldE0:
		return r.E0, true
	case FieldES0:
		return r.ES0, true
	case FieldET0:
		return r.ET0, true
	default:
		return 0, false
	}
}

// String renders the record on a single line for logs and tooling.
func (r DailyRecord) String() string {
	return fmt.Sprintf("%s TMIN=%.1f TMAX=%.1f IRRAD=%.0f VAP=%.1f WIND=%.1f RAIN=%.2f E0=%.3f ES0=%.3f ET0=%.3f",
		r.Day.Format(time.DateOnly), r.TMin, r.TMax, r.Irrad, r.Vap, r.Wind, r.Rain, r.E0, r.ES0, r.ET0)
}

// TruncateDay normalizes t to midnight UTC of its calendar day.
func TruncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
