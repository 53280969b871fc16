package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"

	"github.com/egannguyen/inventory-ledger/internal/entity"
	"github.com/egannguyen/inventory-ledger/internal/messaging"
)

// messageWriter is the part of kafkaGo.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkaGo.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer messageWriter
	topic  string
}

// NewPublisher creates a Kafka publisher that writes every event to topic.
func NewPublisher(brokers []string, topic string) messaging.Publisher {
	w := &kafkaGo.Writer{
		Addr:         kafkaGo.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkaGo.Hash{},
		RequiredAcks: kafkaGo.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	slog.Info("Kafka publisher configured", "brokers", brokers, "topic", topic)
	return &kafkaPublisher{writer: w, topic: topic}
}

func (k *kafkaPublisher) PublishEvent(ctx context.Context, key string, event entity.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.EventType(), err)
	}

	err = k.writer.WriteMessages(ctx, kafkaGo.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafkaGo.Header{
			{Key: "event_type", Value: []byte(event.EventType())},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", event.EventType(), k.topic, err)
	}
	return nil
}

func (k *kafkaPublisher) Close() error {
	return k.writer.Close()
}
