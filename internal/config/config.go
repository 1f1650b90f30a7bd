package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/weather-ingest/internal/refet"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	WeatherFile  string
	CacheDir     string
	CacheEnabled bool
	ETModel      refet.Model

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Optional Kafka sink for parsed daily records.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
	BatchSize      int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	etModel, err := refet.ParseModel(sharedcfg.EnvOrDefault("ET_MODEL", string(refet.ModelPenmanMonteith)))
	if err != nil {
		return nil, fmt.Errorf("invalid ET_MODEL: %w", err)
	}

	cfg := &Config{
		WeatherFile:     os.Getenv("WEATHER_FILE"),
		CacheDir:        sharedcfg.EnvOrDefault("METEO_CACHE_DIR", defaultCacheDir()),
		CacheEnabled:    parseBool("CACHE_ENABLED", true),
		ETModel:         etModel,
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		KafkaEnabled:    parseBool("KAFKA_ENABLED", false),
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic:  sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "daily-weather"),
		BatchSize:       batchSize,
	}

	if cfg.WeatherFile == "" {
		return nil, errors.New("WEATHER_FILE is required")
	}
	if cfg.CacheEnabled && cfg.CacheDir == "" {
		return nil, errors.New("METEO_CACHE_DIR is required when CACHE_ENABLED is true")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}

// defaultCacheDir mirrors the per-user meteo cache location.
func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "weather-ingest", "meteo_cache")
	}
	return filepath.Join(os.TempDir(), "weather-ingest", "meteo_cache")
}

func parseBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	default:
		return def
	}
}
