package types

import (
	"encoding/json"
	"time"
)

// PubSubType selects the transport used for outbound event delivery
type PubSubType string

const (
	MemoryPubSub PubSubType = "memory"
)

// Outbound event names published on the event bus. Consumers (email,
// dashboards) subscribe to these, the reconciler never calls them directly.
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
	EventOrderConfirmed   = "order.confirmed"
	EventOrderReady       = "order.ready"
	EventOrderDelivered   = "order.delivered"
	EventOrderCancelled   = "order.cancelled"
)

// OutboundEvent is the envelope published on the internal event bus when a
// reconciled payment or an order transition produces a side effect.
type OutboundEvent struct {
	ID        string          `json:"id"`
	EventName string          `json:"event_name"`
	TenantID  string          `json:"tenant_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewOutboundEvent builds an envelope with a generated id and current timestamp
func NewOutboundEvent(eventName, tenantID string, payload interface{}) (*OutboundEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &OutboundEvent{
		ID:        GenerateUUIDWithPrefix(UUIDPrefixEvent),
		EventName: eventName,
		TenantID:  tenantID,
		Timestamp: time.Now().UTC(),
		Payload:   data,
	}, nil
}
