package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes enriched records to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for topic. Records are keyed by their
// disaster identifier so every update of one disaster lands on one partition.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes every record's export row and publishes them in a
// single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d records to %s: %w", len(msgs), w.writer.Topic, err)
	}
	w.logger.Info("records published", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a record's export row into a Kafka message.
func serializeToMessage(rec domain.Record) (kafkago.Message, error) {
	row := rec.Project()
	data, err := json.Marshal(row)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize record %s: %w", rec.ID(), err)
	}
	return kafkago.Message{
		Key:   []byte(rec.ID()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "station", Value: []byte(row.Station.ID())},
			{Key: "enriched_at", Value: []byte(row.EnrichedAt.Format(time.RFC3339))},
		},
	}, nil
}
