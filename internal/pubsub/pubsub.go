package pubsub

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
)

// PubSub is the transport for outbound domain events. The in-memory
// implementation backs a single process; the interface leaves room for a
// broker-backed one without touching publishers or consumers.
type PubSub interface {
	Publish(ctx context.Context, topic string, msg *message.Message) error
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}
