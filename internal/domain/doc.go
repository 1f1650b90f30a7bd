// Package domain models daily weather observations read from IRS station files.
//
// # Data Source
//
// IRS files are delivered per station as semicolon-separated text. The first two
// lines form a preamble and everything after that is a header row followed by one
// row per day.
//
//	#Wageningen/NL lat=51.97 lon=5.67 elev=7.0#
//	#Daily observations 2015, quality controlled#
//	w_date;srad;tmin;tmax;vprs_tx;wind;rain;
//	20150801;15.2;11.3;22.8;14.1;2.9;0.4;
//
// Preamble:
//
//	The site line is wrapped in a marker character at both ends. Inside it holds
//	"station/country" followed by lat=, lon= and elev= tokens at fixed positions.
//	The second line is free text and becomes the station description.
//
// Rows:
//
//	Every row, header included, ends with a trailing ";" which produces an empty
//	final cell. That cell is dropped before the row is interpreted. Header cells are
//	resolved to canonical fields through a fixed spelling table (see [Translate]);
//	unknown columns are ignored in every row.
//
// # Units
//
// Source values are converted on read (see [Convert]):
//
//	DAY    YYYYMMDD            -> calendar day (UTC midnight)
//	IRRAD  MJ/m2/day           -> J/m2/day   (x 1e6)
//	RAIN   mm/day              -> cm/day     (/ 10)
//	TMIN, TMAX (C), VAP (hPa), WIND (m/s) are taken as-is.
//
// Reference evapotranspiration (E0, ES0, ET0) is derived per day and stored in cm/day.
//
// # Validity
//
// A [DailyRecord] is only admitted to a [Series] when every observed field is present
// and inside the plausible range used for any weather source (see [CheckRecord]).
// One record per calendar day; a second record for the same day is an error rather
// than an overwrite, so a corrupted file can never silently shift a time series.
package domain
