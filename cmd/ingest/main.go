package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/weather-ingest/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/weather-ingest/internal/adapter/kafka"
	"github.com/couchcryptid/weather-ingest/internal/cache"
	"github.com/couchcryptid/weather-ingest/internal/config"
	"github.com/couchcryptid/weather-ingest/internal/events"
	"github.com/couchcryptid/weather-ingest/internal/ingest"
	"github.com/couchcryptid/weather-ingest/internal/observability"
	"github.com/couchcryptid/weather-ingest/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	bus := events.NewBus()
	events.NewApplicationLogger(bus, logger)

	// The meteo cache is feature-flagged via CACHE_ENABLED.
	var meteoCache *cache.Manager
	if cfg.CacheEnabled {
		meteoCache = cache.NewManager(cfg.CacheDir, logger, metrics)
		logger.Info("meteo cache enabled", "dir", cfg.CacheDir)
	} else {
		logger.Info("meteo cache disabled")
	}

	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		logger.Info("kafka sink enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	}

	catalog := ingest.NewCatalog(metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, catalog, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Ingest the weather file, then publish it downstream if a sink is configured.
	ingestErr := make(chan error, 1)
	go func() {
		p, err := ingest.NewProvider(cfg.WeatherFile, ingest.Options{
			Cache:   meteoCache,
			Logger:  logger,
			Metrics: metrics,
			Events:  bus,
			ETModel: cfg.ETModel,
		})
		if err != nil {
			ingestErr <- err
			return
		}
		catalog.Set(p)

		if writer == nil {
			return
		}
		publisher := pipeline.New(writer, logger, metrics, cfg.BatchSize)
		if _, err := publisher.Publish(ctx, p.Meta(), p.Series()); err != nil && ctx.Err() == nil {
			logger.Error("publish failed", "error", err)
		}
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
	case err := <-ingestErr:
		logger.Error("ingestion failed", "error", err)
		exitCode = 1
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	if exitCode != 0 {
		cancel()
		stop()
		os.Exit(exitCode)
	}
}
