//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/weather-ingest/internal/adapter/kafka"
	"github.com/couchcryptid/weather-ingest/internal/cache"
	"github.com/couchcryptid/weather-ingest/internal/config"
	"github.com/couchcryptid/weather-ingest/internal/domain"
	"github.com/couchcryptid/weather-ingest/internal/ingest"
	"github.com/couchcryptid/weather-ingest/internal/observability"
	"github.com/couchcryptid/weather-ingest/internal/pipeline"
)

const testSinkTopic = "test-daily-weather"

const weatherFile = "*Wageningen/NL lat=51.97 lon=5.67 elev=7.0*\n" +
	"*Integration test station*\n" +
	"w_date;srad;tmin;tmax;vprs_tx;wind;rain;\n" +
	"20150801;15.2;11.3;22.8;14.1;2.9;0.4;\n" +
	"20150802;18.4;12.1;24.5;15.3;2.1;0.0;\n" +
	"20150803;9.7;13.0;19.2;16.0;4.4;12.6;\n"

// sinkMessage holds a deserialized message read from the sink topic.
type sinkMessage struct {
	Record  domain.DailyRecord
	Key     string
	Headers map[string]string
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("weather-ingest-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer func() { _ = ctrl.Close() }()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// readSink reads a single message from the sink consumer and deserializes it.
func readSink(ctx context.Context, t *testing.T, consumer *kafkago.Reader) sinkMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var rec domain.DailyRecord
	require.NoError(t, json.Unmarshal(msg.Value, &rec), "unmarshal sink message")

	return sinkMessage{Record: rec, Key: string(msg.Key), Headers: headers}
}

// TestIngestAndPublish drives a weather file through the provider, the meteo
// cache, and the publisher into a real Kafka topic.
func TestIngestAndPublish(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	src := filepath.Join(t.TempDir(), "wageningen.csv")
	require.NoError(t, os.WriteFile(src, []byte(weatherFile), 0o644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(src, past, past))

	metrics := observability.NewMetricsForTesting()
	meteoCache := cache.NewManager(filepath.Join(t.TempDir(), "meteo_cache"), discardLogger(), metrics)
	opts := ingest.Options{Cache: meteoCache, Logger: discardLogger(), Metrics: metrics}

	parsed, err := ingest.NewProvider(src, opts)
	require.NoError(t, err)
	require.False(t, parsed.FromCache())

	p, err := ingest.NewProvider(src, opts)
	require.NoError(t, err)
	require.True(t, p.FromCache(), "second load served from the meteo cache")

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
		BatchSize:      2,
	}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	n, err := pipeline.New(writer, discardLogger(), metrics, cfg.BatchSize).Publish(ctx, p.Meta(), p.Series())
	require.NoError(t, err)
	require.Equal(t, 3, n)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testSinkTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1e6,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	want := parsed.Series().Records()
	for i := range want {
		msg := readSink(ctx, t, consumer)
		day := want[i].Day.Format(time.DateOnly)

		assert.Equal(t, "Wageningen|"+day, msg.Key)
		assert.Equal(t, "Wageningen", msg.Headers["station"])
		assert.Equal(t, day, msg.Headers["day"])
		assert.True(t, want[i].Day.Equal(msg.Record.Day))
		assert.InDelta(t, want[i].Rain, msg.Record.Rain, 1e-12)
		assert.InDelta(t, want[i].ET0, msg.Record.ET0, 1e-12)
	}
}
