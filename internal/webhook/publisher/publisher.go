package publisher

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/comanda/comanda/internal/config"
	"github.com/comanda/comanda/internal/logger"
	"github.com/comanda/comanda/internal/pubsub"
	"github.com/comanda/comanda/internal/types"
)

// EventPublisher produces outbound domain events. Reconciliation side
// effects go through here so that replayed notifications, which never reach
// the publish step twice, cannot duplicate emails or counters.
type EventPublisher interface {
	Publish(ctx context.Context, event *types.OutboundEvent) error
	Close() error
}

type eventPublisher struct {
	pubSub pubsub.PubSub
	topic  string
	logger *logger.Logger
}

// NewPublisher creates a pubsub-backed event publisher
func NewPublisher(pubSub pubsub.PubSub, cfg *config.Configuration, log *logger.Logger) EventPublisher {
	return &eventPublisher{
		pubSub: pubSub,
		topic:  cfg.Webhook.Topic,
		logger: log,
	}
}

func (p *eventPublisher) Publish(ctx context.Context, event *types.OutboundEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	messageID := event.ID
	if messageID == "" {
		messageID = watermill.NewUUID()
	}

	msg := message.NewMessage(messageID, payload)
	msg.Metadata.Set("tenant_id", event.TenantID)
	msg.Metadata.Set("event_name", event.EventName)

	if err := p.pubSub.Publish(ctx, p.topic, msg); err != nil {
		p.logger.Errorw("failed to publish event",
			"error", err,
			"event_id", event.ID,
			"event_name", event.EventName,
			"tenant_id", event.TenantID,
		)
		return err
	}

	p.logger.Debugw("published event",
		"event_id", event.ID,
		"event_name", event.EventName,
		"tenant_id", event.TenantID,
	)
	return nil
}

// Close closes the publisher
func (p *eventPublisher) Close() error {
	return p.pubSub.Close()
}
