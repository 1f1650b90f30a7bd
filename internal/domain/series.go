package domain

import (
	"fmt"
	"slices"
	"time"
)

// Series is a date-keyed collection of daily records. It is filled once during
// ingestion and read-only afterwards.
type Series struct {
	records map[time.Time]DailyRecord
	first   time.Time
	last    time.Time
}

// NewSeries returns an empty series.
func NewSeries() *Series {
	return &Series{records: make(map[time.Time]DailyRecord)}
}

// SeriesFromRecords builds a series, applying the same checks as Add.
func SeriesFromRecords(records []DailyRecord) (*Series, error) {
	s := NewSeries()
	for _, rec := range records {
		if err := s.Add(rec); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add validates rec and stores it under its day.
func (s *Series) Add(rec DailyRecord) error {
	if err := CheckRecord(rec); err != nil {
		return err
	}
	day := TruncateDay(rec.Day)
	if _, ok := s.records[day]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateDate, day.Format(time.DateOnly))
	}
	rec.Day = day
	s.records[day] = rec
	if s.first.IsZero() || day.Before(s.first) {
		s.first = day
	}
	if s.last.IsZero() || day.After(s.last) {
		s.last = day
	}
	return nil
}

// Get returns the record for the calendar day of t.
func (s *Series) Get(t time.Time) (DailyRecord, error) {
	day := TruncateDay(t)
	rec, ok := s.records[day]
	if !ok {
		return DailyRecord{}, fmt.Errorf("%w: %s", ErrNoData, day.Format(time.DateOnly))
	}
	return rec, nil
}

// Len returns the number of days stored.
func (s *Series) Len() int { return len(s.records) }

// First returns the earliest day, or the zero time for an empty series.
func (s *Series) First() time.Time { return s.first }

// Last returns the latest day, or the zero time for an empty series.
func (s *Series) Last() time.Time { return s.last }

// Dates returns every stored day in ascending order.
func (s *Series) Dates() []time.Time {
	dates := make([]time.Time, 0, len(s.records))
	for d := range s.records {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })
	return dates
}

// Records returns every record in ascending day order.
func (s *Series) Records() []DailyRecord {
	dates := s.Dates()
	out := make([]DailyRecord, len(dates))
	for i, d := range dates {
		out[i] = s.records[d]
	}
	return out
}

// Range returns the records between start and end inclusive, in day order.
// Missing days are skipped.
func (s *Series) Range(start, end time.Time) []DailyRecord {
	if len(s.records) == 0 {
		return nil
	}
	start, end = TruncateDay(start), TruncateDay(end)
	if start.Before(s.first) {
		start = s.first
	}
	if end.After(s.last) {
		end = s.last
	}
	var out []DailyRecord
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if rec, ok := s.records[d]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// MissingDays returns the days between First and Last without a record.
func (s *Series) MissingDays() []time.Time {
	if len(s.records) == 0 {
		return nil
	}
	var missing []time.Time
	for d := s.first; !d.After(s.last); d = d.AddDate(0, 0, 1) {
		if _, ok := s.records[d]; !ok {
			missing = append(missing, d)
		}
	}
	return missing
}
