package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-ingest/internal/domain"
	"github.com/couchcryptid/weather-ingest/internal/observability"
)

// BatchLoader writes multiple daily records of one station to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, station string, records []domain.DailyRecord) error
}

// Publisher pushes a loaded weather series to a BatchLoader in fixed-size batches.
type Publisher struct {
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	batchSize   int
	maxAttempts int
	backoff     time.Duration
	maxBackoff  time.Duration
}

// New creates a Publisher. A batch is retried up to five times before Publish gives up,
// with exponential backoff starting at 200ms and capped at 5s.
func New(l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Publisher {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Publisher{
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
		maxAttempts: 5,
		backoff:     200 * time.Millisecond,
		maxBackoff:  5 * time.Second,
	}
}

// Publish sends every record of series in day order and returns how many were loaded.
// It stops at the first batch that still fails after all retries, or when ctx is done.
func (p *Publisher) Publish(ctx context.Context, meta domain.StationMeta, series *domain.Series) (int, error) {
	records := series.Records()
	p.logger.Info("publishing weather series",
		"station", meta.Station,
		"days", len(records),
		"batch_size", p.batchSize,
	)

	published := 0
	for start := 0; start < len(records); start += p.batchSize {
		end := min(start+p.batchSize, len(records))
		batch := records[start:end]

		if err := p.loadWithRetry(ctx, meta.Station, batch); err != nil {
			return published, fmt.Errorf("publish days %s..%s: %w",
				batch[0].Day.Format(time.DateOnly), batch[len(batch)-1].Day.Format(time.DateOnly), err)
		}
		published += len(batch)
		p.metrics.RecordsPublished.Add(float64(len(batch)))
	}

	p.logger.Info("weather series published", "station", meta.Station, "records", published)
	return published, nil
}

// loadWithRetry loads one batch, backing off between failed attempts.
func (p *Publisher) loadWithRetry(ctx context.Context, station string, batch []domain.DailyRecord) error {
	backoff := p.backoff
	var err error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		err = p.loader.LoadBatch(ctx, station, batch)
		if err == nil {
			return nil
		}

		p.metrics.PublishErrors.Inc()
		p.logger.Error("load batch failed",
			"error", err,
			"attempt", attempt,
			"batch_size", len(batch),
		)
		if attempt == p.maxAttempts {
			break
		}
		if !sleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = nextBackoff(backoff, p.maxBackoff)
	}
	return err
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
