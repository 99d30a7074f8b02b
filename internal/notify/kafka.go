package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"
)

// Event kinds published to the notification topic.
const (
	kindSound = "sound"
	kindToast = "toast"
)

// event is the wire form of a notification on the Kafka topic.
type event struct {
	Kind  string `json:"kind"`
	Toast *Toast `json:"toast,omitempty"`
}

// Kafka publishes notification events to a Kafka topic for downstream
// renderers (desktop client, web socket fanout).
type Kafka struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewKafka creates a Kafka notifier for the given brokers and topic.
func NewKafka(brokers []string, topic string, logger *slog.Logger) *Kafka {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Kafka{writer: w, logger: logger}
}

// PlayAlertSound publishes a sound event.
func (k *Kafka) PlayAlertSound(ctx context.Context) error {
	msg, err := serializeEvent(event{Kind: kindSound}, kindSound)
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, msg)
}

// ShowToast publishes a toast event keyed by the alert ID.
func (k *Kafka) ShowToast(ctx context.Context, t Toast) error {
	msg, err := serializeEvent(event{Kind: kindToast, Toast: &t}, t.AlertID)
	if err != nil {
		return err
	}
	msg.Headers = []kafkago.Header{
		{Key: "severity", Value: []byte(t.Severity)},
		{Key: "category", Value: []byte(t.Category)},
	}
	return k.writer.WriteMessages(ctx, msg)
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}

// serializeEvent marshals a notification event into a Kafka message.
func serializeEvent(e event, key string) (kafkago.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize notification event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
	}, nil
}
