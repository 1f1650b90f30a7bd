package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/couchcryptid/weather-ingest/internal/domain"
)

// Fixed properties of the IRS data source.
const (
	angstromA   = -0.18
	angstromB   = -0.55
	noDataValue = -99
)

// ReadMeta consumes the two preamble lines from r and returns the station metadata.
// r is left positioned at the header row.
func ReadMeta(r *bufio.Reader, path string) (domain.StationMeta, error) {
	site, err := readLine(r)
	if err != nil {
		return domain.StationMeta{}, &domain.MetaFormatError{Path: path, Err: fmt.Errorf("read site line: %w", err)}
	}
	comment, err := readLine(r)
	if err != nil {
		return domain.StationMeta{}, &domain.MetaFormatError{Path: path, Err: fmt.Errorf("read comment line: %w", err)}
	}

	meta, err := parseSiteLine(stripMarkers(site))
	if err != nil {
		var mfe *domain.MetaFormatError
		if errors.As(err, &mfe) {
			mfe.Path = path
		}
		return domain.StationMeta{}, err
	}
	meta.Description = stripMarkers(comment)
	return meta, nil
}

// readLine returns the next line without its line terminator.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	switch {
	case err == nil:
	case errors.Is(err, io.EOF) && line != "":
	case errors.Is(err, io.EOF):
		return "", io.ErrUnexpectedEOF
	default:
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// stripMarkers removes the marker character wrapping a preamble line. The leading
// character is always a marker; the trailing one only when it is not part of a value.
func stripMarkers(line string) string {
	runes := []rune(line)
	if len(runes) == 0 {
		return ""
	}
	runes = runes[1:]
	if n := len(runes); n > 0 && isMarker(runes[n-1]) {
		runes = runes[:n-1]
	}
	return strings.TrimSpace(string(runes))
}

func isMarker(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != '-' && r != '_'
}

// parseSiteLine parses "station/country lat=<f> lon=<f> elev=<f>".
func parseSiteLine(line string) (domain.StationMeta, error) {
	tokens := strings.Fields(line)
	if len(tokens) < 4 {
		return domain.StationMeta{}, &domain.MetaFormatError{
			Token: line,
			Err:   fmt.Errorf("want 4 tokens, got %d", len(tokens)),
		}
	}

	station, country, ok := strings.Cut(tokens[0], "/")
	if !ok || station == "" || country == "" {
		return domain.StationMeta{}, &domain.MetaFormatError{Token: tokens[0], Err: errors.New("want station/country")}
	}

	lat, err := siteValue(tokens[1], "lat", domain.FieldLat)
	if err != nil {
		return domain.StationMeta{}, err
	}
	lon, err := siteValue(tokens[2], "lon", domain.FieldLon)
	if err != nil {
		return domain.StationMeta{}, err
	}
	elev, err := siteValue(tokens[3], "elev", domain.FieldElev)
	if err != nil {
		return domain.StationMeta{}, err
	}

	a, b, err := domain.CheckAngstromAB(angstromA, angstromB)
	if err != nil {
		return domain.StationMeta{}, err
	}

	return domain.StationMeta{
		Country:     country,
		Station:     station,
		Latitude:    lat,
		Longitude:   lon,
		Elevation:   elev,
		AngstromA:   a,
		AngstromB:   b,
		NoDataValue: noDataValue,
	}, nil
}

// siteValue parses a key=value token and range-checks the value.
func siteValue(token, key string, field domain.Field) (float64, error) {
	k, raw, ok := strings.Cut(token, "=")
	if !ok || k != key {
		return 0, &domain.MetaFormatError{Token: token, Err: fmt.Errorf("want %s=<value>", key)}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &domain.MetaFormatError{Token: token, Err: err}
	}
	if err := domain.CheckRange(field, v); err != nil {
		return 0, &domain.MetaFormatError{Token: token, Err: err}
	}
	return v, nil
}
