package ingest

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/couchcryptid/weather-ingest/internal/observability"
)

// ErrNotReady is returned by CheckReadiness until a provider has been published.
var ErrNotReady = errors.New("weather data not loaded")

// Catalog hands the loaded provider from the ingestion goroutine to readers.
// The zero value is empty and safe for concurrent use.
type Catalog struct {
	current atomic.Pointer[Provider]
	metrics *observability.Metrics
}

// NewCatalog creates an empty catalog. metrics may be nil.
func NewCatalog(metrics *observability.Metrics) *Catalog {
	return &Catalog{metrics: metrics}
}

// Set publishes p to readers, replacing any earlier provider.
func (c *Catalog) Set(p *Provider) {
	c.current.Store(p)
	if c.metrics != nil {
		c.metrics.ProviderReady.Set(1)
	}
}

// Provider returns the published provider, or nil before the first Set.
func (c *Catalog) Provider() *Provider {
	return c.current.Load()
}

// CheckReadiness reports whether a provider is available.
func (c *Catalog) CheckReadiness(_ context.Context) error {
	if c.current.Load() == nil {
		return ErrNotReady
	}
	return nil
}
