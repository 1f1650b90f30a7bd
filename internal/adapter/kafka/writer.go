package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/weather-ingest/internal/config"
	"github.com/couchcryptid/weather-ingest/internal/domain"
)

// Writer produces daily weather records to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    cfg.BatchSize,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes the records of one station in a single
// WriteMessages call. Records of a station hash to the same partition, so a
// consumer sees them in day order.
func (w *Writer) LoadBatch(ctx context.Context, station string, records []domain.DailyRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(station, records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d messages: %w", len(msgs), err)
	}
	w.logger.Debug("batch written", "station", station, "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// messageKey identifies one station-day, e.g. "Wageningen|2015-08-01".
func messageKey(station string, day time.Time) string {
	return station + "|" + day.Format(time.DateOnly)
}

// serializeToMessage marshals a DailyRecord into a Kafka message.
func serializeToMessage(station string, rec domain.DailyRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize daily record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(messageKey(station, rec.Day)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "station", Value: []byte(station)},
			{Key: "day", Value: []byte(rec.Day.Format(time.DateOnly))},
		},
	}, nil
}
