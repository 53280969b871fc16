// Package watermillpub publishes domain events through a Watermill publisher.
package watermillpub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/egannguyen/inventory-ledger/internal/entity"
	"github.com/egannguyen/inventory-ledger/internal/messaging"
)

// Metadata keys set on every message.
const (
	EventTypeKey    = "event_type"
	PartitionKeyKey = "partition_key"
)

type publisher struct {
	pub   message.Publisher
	topic string
}

// NewPublisher adapts any Watermill publisher. Events go to topic as JSON.
func NewPublisher(pub message.Publisher, topic string) messaging.Publisher {
	return &publisher{pub: pub, topic: topic}
}

// NewKafkaPublisher publishes to Kafka through watermill-kafka. Messages are
// partitioned by the event key so one product's sales stay ordered.
func NewKafkaPublisher(brokers []string, topic string) (messaging.Publisher, error) {
	saramaCfg := kafka.DefaultSaramaSyncPublisherConfig()
	saramaCfg.Producer.RequiredAcks = sarama.WaitForLocal

	pub, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers: brokers,
		Marshaler: kafka.NewWithPartitioningMarshaler(func(_ string, msg *message.Message) (string, error) {
			return msg.Metadata.Get(PartitionKeyKey), nil
		}),
		OverwriteSaramaConfig: saramaCfg,
	}, watermill.NewSlogLogger(slog.Default()))
	if err != nil {
		return nil, fmt.Errorf("failed to create watermill kafka publisher: %w", err)
	}

	slog.Info("Watermill publisher configured", "brokers", brokers, "topic", topic)
	return NewPublisher(pub, topic), nil
}

func (p *publisher) PublishEvent(ctx context.Context, key string, event entity.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.EventType(), err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set(EventTypeKey, event.EventType())
	msg.Metadata.Set(PartitionKeyKey, key)

	if err := p.pub.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", event.EventType(), p.topic, err)
	}
	return nil
}

func (p *publisher) Close() error {
	return p.pub.Close()
}
