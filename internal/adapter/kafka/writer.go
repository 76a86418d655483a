// Package kafka publishes served risk predictions to a sink topic for
// downstream analytics.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/marrowdrift/road-risk-service/internal/config"
	"github.com/marrowdrift/road-risk-service/internal/domain"
)

// Writer produces prediction messages to a Kafka topic.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes and publishes predictions to the sink topic in a
// single WriteMessages call. Messages are keyed by the bucketed
// coordinate so predictions for one area land in one partition.
func (w *Writer) Publish(ctx context.Context, preds []domain.RiskPrediction) error {
	if len(preds) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(preds))
	for i := range preds {
		msg, err := serializeToMessage(preds[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a RiskPrediction into a Kafka message.
func serializeToMessage(pred domain.RiskPrediction) (kafkago.Message, error) {
	data, err := json.Marshal(pred)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize risk prediction: %w", err)
	}
	key := fmt.Sprintf("%.2f_%.2f", pred.Location.Lat, pred.Location.Lon)
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "risk_level", Value: []byte(pred.RiskLevel)},
			{Key: "source", Value: []byte(pred.Source)},
			{Key: "predicted_at", Value: []byte(pred.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}
