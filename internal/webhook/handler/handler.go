package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/comanda/comanda/internal/config"
	"github.com/comanda/comanda/internal/email"
	"github.com/comanda/comanda/internal/logger"
	"github.com/comanda/comanda/internal/pubsub"
	"github.com/comanda/comanda/internal/types"
)

// PaymentEventPayload is the payload carried by payment.* events
type PaymentEventPayload struct {
	CheckoutSessionID string `json:"checkout_session_id"`
	OrderID           string `json:"order_id"`
	OrderNumber       string `json:"order_number"`
	CustomerName      string `json:"customer_name"`
	CustomerEmail     string `json:"customer_email,omitempty"`
	Amount            string `json:"amount"`
	Currency          string `json:"currency"`
}

// Handler consumes outbound events and applies notification side effects.
// It runs off the event bus so that reconciliation never blocks on email
// delivery and replayed notifications cannot re-trigger sends.
type Handler struct {
	pubSub pubsub.PubSub
	topic  string
	sender email.Sender
	logger *logger.Logger
}

// NewHandler creates an event consumer
func NewHandler(pubSub pubsub.PubSub, cfg *config.Configuration, sender email.Sender, log *logger.Logger) *Handler {
	return &Handler{
		pubSub: pubSub,
		topic:  cfg.Webhook.Topic,
		sender: sender,
		logger: log,
	}
}

// Start begins consuming events until the context is cancelled
func (h *Handler) Start(ctx context.Context) error {
	messages, err := h.pubSub.Subscribe(ctx, h.topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			h.handle(ctx, msg)
			msg.Ack()
		}
	}()
	return nil
}

func (h *Handler) handle(ctx context.Context, msg *message.Message) {
	var event types.OutboundEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		h.logger.Errorw("failed to decode event", "error", err, "message_id", msg.UUID)
		return
	}

	switch event.EventName {
	case types.EventPaymentSucceeded:
		h.handlePaymentSucceeded(ctx, &event)
	default:
		h.logger.Debugw("no side effect bound to event", "event_name", event.EventName)
	}
}

func (h *Handler) handlePaymentSucceeded(ctx context.Context, event *types.OutboundEvent) {
	var payload PaymentEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		h.logger.Errorw("failed to decode payment event payload",
			"error", err,
			"event_id", event.ID,
		)
		return
	}

	if payload.CustomerEmail == "" {
		h.logger.Debugw("no customer email on order, skipping confirmation",
			"order_id", payload.OrderID,
		)
		return
	}

	subject := fmt.Sprintf("Payment confirmed for order %s", payload.OrderNumber)
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your payment of %s %s for order <b>%s</b> was confirmed. The kitchen is on it.</p>",
		payload.CustomerName, payload.Amount, payload.Currency, payload.OrderNumber,
	)

	if err := h.sender.Send(ctx, payload.CustomerEmail, subject, html); err != nil {
		h.logger.Errorw("failed to send confirmation email",
			"error", err,
			"order_id", payload.OrderID,
			"event_id", event.ID,
		)
	}
}
