package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/weather-ingest/internal/cache"
	"github.com/couchcryptid/weather-ingest/internal/domain"
	"github.com/couchcryptid/weather-ingest/internal/events"
	"github.com/couchcryptid/weather-ingest/internal/observability"
	"github.com/couchcryptid/weather-ingest/internal/refet"
)

// ProviderType names this provider in cache file names and snapshots.
const ProviderType = "IRSWeatherDataProvider"

// Options configures NewProvider. Every field is optional: a nil Cache disables
// caching, and a nil Logger discards log output.
type Options struct {
	Cache   *cache.Manager
	Logger  *slog.Logger
	Metrics *observability.Metrics
	Events  *events.Bus
	ETModel refet.Model
}

// Provider holds the weather series read from one IRS file.
type Provider struct {
	source    string
	meta      domain.StationMeta
	series    *domain.Series
	fromCache bool
}

// NewProvider loads the weather file at path, from cache when a fresh cache file
// exists and by parsing the source otherwise. A parse failure aborts the whole file;
// no partial series is ever returned.
func NewProvider(path string, opts Options) (*Provider, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.ETModel == "" {
		opts.ETModel = refet.ModelPenmanMonteith
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSourceNotFound, abs)
		}
		return nil, fmt.Errorf("stat %s: %w", abs, err)
	}

	logger = logger.With("run_id", uuid.NewString(), "path", abs)
	start := time.Now()

	p, err := load(abs, opts, logger)
	if err != nil {
		if opts.Metrics != nil {
			opts.Metrics.ParseErrors.Inc()
		}
		logger.Error("weather file rejected", "error", err)
		return nil, err
	}

	origin := "parse"
	if p.fromCache {
		origin = "cache"
	}
	if opts.Metrics != nil {
		opts.Metrics.IngestDuration.WithLabelValues(origin).Observe(time.Since(start).Seconds())
	}
	logger.Info("weather data loaded",
		"station", p.meta.Station,
		"days", p.series.Len(),
		"first", p.series.First().Format(time.DateOnly),
		"last", p.series.Last().Format(time.DateOnly),
		"from_cache", p.fromCache,
	)

	if opts.Events != nil {
		opts.Events.Publish(events.Event{
			Signal: events.SignalWeatherReady,
			Day:    p.series.Last(),
			Payload: events.WeatherReady{
				Source:    abs,
				Station:   p.meta.Station,
				Days:      p.series.Len(),
				First:     p.series.First(),
				Last:      p.series.Last(),
				FromCache: p.fromCache,
			},
		})
	}
	return p, nil
}

func load(abs string, opts Options, logger *slog.Logger) (*Provider, error) {
	if opts.Cache != nil {
		if entry, ok := opts.Cache.TryLoad(ProviderType, abs, opts.ETModel); ok {
			logger.Debug("serving weather data from cache", "cache_path", opts.Cache.Path(ProviderType, abs))
			return &Provider{source: abs, meta: entry.Meta, series: entry.Series, fromCache: true}, nil
		}
	}

	meta, series, err := parseFile(abs, opts.ETModel, opts.Metrics)
	if err != nil {
		return nil, err
	}

	if opts.Cache != nil {
		opts.Cache.Store(ProviderType, abs, cache.Entry{Meta: meta, Series: series, ETModel: opts.ETModel})
	}
	return &Provider{source: abs, meta: meta, series: series}, nil
}

// parseFile reads the preamble and every observation row of one source file.
func parseFile(path string, model refet.Model, metrics *observability.Metrics) (domain.StationMeta, *domain.Series, error) {
	src, err := openSource(path)
	if err != nil {
		return domain.StationMeta{}, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = src.Close() }()

	br := bufio.NewReader(src)
	meta, err := ReadMeta(br, path)
	if err != nil {
		return domain.StationMeta{}, nil, err
	}

	series := domain.NewSeries()
	obs := NewObservationReader(br, path, meta, model)
	for {
		rec, err := obs.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.StationMeta{}, nil, err
		}
		if err := series.Add(rec); err != nil {
			rowErr := &domain.RowError{Path: path, Line: obs.Line(), Err: err}
			var rangeErr *domain.RangeError
			if errors.As(err, &rangeErr) {
				rowErr.Field = rangeErr.Field
			}
			return domain.StationMeta{}, nil, rowErr
		}
		if metrics != nil {
			metrics.RecordsParsed.Inc()
		}
	}
	if series.Len() == 0 {
		return domain.StationMeta{}, nil, fmt.Errorf("%s: %w: file has no observation rows", path, domain.ErrNoData)
	}
	return meta, series, nil
}

// Source returns the absolute path of the weather file.
func (p *Provider) Source() string { return p.source }

// Meta returns the station metadata.
func (p *Provider) Meta() domain.StationMeta { return p.meta }

// Series returns the loaded series. Callers must not modify it.
func (p *Provider) Series() *domain.Series { return p.series }

// FromCache reports whether the series was served from the cache.
func (p *Provider) FromCache() bool { return p.fromCache }

// Get returns the record for the calendar day of day.
func (p *Provider) Get(day time.Time) (domain.DailyRecord, error) {
	return p.series.Get(day)
}
