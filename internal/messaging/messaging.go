package messaging

import (
	"context"

	"github.com/egannguyen/inventory-ledger/internal/entity"
)

// Publisher defines an interface for publishing events to a message broker.
type Publisher interface {
	PublishEvent(ctx context.Context, key string, event entity.Event) error
	Close() error
}

type nopPublisher struct{}

// NewNopPublisher returns a Publisher that drops every event. It is used when no
// broker is configured.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) PublishEvent(context.Context, string, entity.Event) error { return nil }

func (nopPublisher) Close() error { return nil }
