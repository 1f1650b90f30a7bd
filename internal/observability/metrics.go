package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for weather ingestion.
type Metrics struct {
	RecordsParsed prometheus.Counter
	ParseErrors   prometheus.Counter
	ProviderReady prometheus.Gauge

	// Ingestion duration by source: "cache" or "parse".
	IngestDuration *prometheus.HistogramVec

	// Cache metrics.
	CacheLookups *prometheus.CounterVec // labels: result={hit,miss,stale,corrupt,model_mismatch}
	CacheWrites  *prometheus.CounterVec // labels: outcome={success,error}

	// Sink metrics.
	RecordsPublished prometheus.Counter
	PublishErrors    prometheus.Counter
}

// NewMetrics creates and registers all ingestion metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_ingest",
			Name:      "records_parsed_total",
			Help:      "Total daily records parsed from source files.",
		}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_ingest",
			Name:      "parse_errors_total",
			Help:      "Total source files rejected by the parser.",
		}),
		ProviderReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_ingest",
			Name:      "provider_ready",
			Help:      "1 when a weather series is loaded and serving lookups.",
		}),
		IngestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weather_ingest",
			Name:      "ingest_duration_seconds",
			Help:      "Duration of loading a weather file, by source.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}, []string{"source"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_ingest",
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by result.",
		}, []string{"result"}),
		CacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_ingest",
			Name:      "cache_writes_total",
			Help:      "Cache writes by outcome.",
		}, []string{"outcome"}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_ingest",
			Name:      "records_published_total",
			Help:      "Total daily records written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_ingest",
			Name:      "publish_errors_total",
			Help:      "Total failed sink batch writes.",
		}),
	}

	prometheus.MustRegister(
		m.RecordsParsed,
		m.ParseErrors,
		m.ProviderReady,
		m.IngestDuration,
		m.CacheLookups,
		m.CacheWrites,
		m.RecordsPublished,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RecordsParsed:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_ingest", Name: "records_parsed_total"}),
		ParseErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_ingest", Name: "parse_errors_total"}),
		ProviderReady:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "weather_ingest", Name: "provider_ready"}),
		IngestDuration:   prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "weather_ingest", Name: "ingest_duration_seconds"}, []string{"source"}),
		CacheLookups:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "weather_ingest", Name: "cache_lookups_total"}, []string{"result"}),
		CacheWrites:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "weather_ingest", Name: "cache_writes_total"}, []string{"outcome"}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_ingest", Name: "records_published_total"}),
		PublishErrors:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_ingest", Name: "publish_errors_total"}),
	}
}
