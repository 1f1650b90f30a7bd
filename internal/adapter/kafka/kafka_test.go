package kafka

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-ingest/internal/config"
	"github.com/couchcryptid/weather-ingest/internal/domain"
)

func testRecord() domain.DailyRecord {
	return domain.DailyRecord{
		Day: time.Date(2015, 8, 1, 0, 0, 0, 0, time.UTC), Lat: 51.97, Lon: 5.67, Elev: 7,
		TMin: 11.3, TMax: 22.8, Irrad: 15.2e6, Vap: 14.1, Wind: 2.9, Rain: 0.04,
		E0: 0.3678774, ES0: 0.3276874, ET0: 0.336749,
	}
}

func TestSerializeToMessage(t *testing.T) {
	msg, err := serializeToMessage("Wageningen", testRecord())
	require.NoError(t, err)

	assert.Equal(t, []byte("Wageningen|2015-08-01"), msg.Key)
	assert.Contains(t, string(msg.Value), `"day":"2015-08-01T00:00:00Z"`)
	assert.Contains(t, string(msg.Value), `"tmax":22.8`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "station", msg.Headers[0].Key)
	assert.Equal(t, []byte("Wageningen"), msg.Headers[0].Value)
	assert.Equal(t, "day", msg.Headers[1].Key)
	assert.Equal(t, []byte("2015-08-01"), msg.Headers[1].Value)

	var roundtrip domain.DailyRecord
	require.NoError(t, json.Unmarshal(msg.Value, &roundtrip))
	assert.Equal(t, testRecord(), roundtrip)
}

func TestSerializeToMessage_NaNFails(t *testing.T) {
	rec := testRecord()
	rec.Wind = math.NaN()
	_, err := serializeToMessage("Wageningen", rec)
	assert.Error(t, err)
}

func TestNewWriter_UsesConfig(t *testing.T) {
	cfg := &config.Config{
		KafkaBrokers:   []string{"broker-1:9092", "broker-2:9092"},
		KafkaSinkTopic: "daily-weather",
		BatchSize:      25,
	}
	w := NewWriter(cfg, nil)
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, "daily-weather", w.writer.Topic)
	assert.Equal(t, 25, w.writer.BatchSize)
}

func TestLoadBatch_Empty(t *testing.T) {
	w := NewWriter(&config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaSinkTopic: "t"}, nil)
	t.Cleanup(func() { _ = w.Close() })
	assert.NoError(t, w.LoadBatch(t.Context(), "Wageningen", nil))
}
