package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-ingest/internal/refet"
)

const testWeatherFile = "testdata/wageningen.csv"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("WEATHER_FILE", testWeatherFile)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, testWeatherFile, cfg.WeatherFile)
	assert.NotEmpty(t, cfg.CacheDir)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, refet.ModelPenmanMonteith, cfg.ETModel)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "daily-weather", cfg.KafkaSinkTopic)
	assert.Equal(t, 50, cfg.BatchSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("WEATHER_FILE", testWeatherFile)
	t.Setenv("METEO_CACHE_DIR", "/var/cache/meteo")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("ET_MODEL", "P")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "weather-days")
	t.Setenv("BATCH_SIZE", "100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/cache/meteo", cfg.CacheDir)
	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, refet.ModelPenman, cfg.ETModel)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "weather-days", cfg.KafkaSinkTopic)
	assert.Equal(t, 100, cfg.BatchSize)
}

func TestLoad_MissingWeatherFile(t *testing.T) {
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEATHER_FILE")
}

func TestLoad_InvalidETModel(t *testing.T) {
	t.Setenv("WEATHER_FILE", testWeatherFile)
	t.Setenv("ET_MODEL", "hargreaves")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ET_MODEL")
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("WEATHER_FILE", testWeatherFile)
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("WEATHER_FILE", testWeatherFile)
	t.Setenv("BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}
