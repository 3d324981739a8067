package service

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/comanda/comanda/internal/domain/checkout"
	"github.com/comanda/comanda/internal/domain/order"
	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/types"
	"github.com/comanda/comanda/internal/webhook/handler"
)

// orderTransitions is the allowed transition table for orders. CANCELLED is
// reachable from every non-terminal state.
var orderTransitions = map[types.OrderStatus][]types.OrderStatus{
	types.OrderStatusPending:   {types.OrderStatusConfirmed, types.OrderStatusCancelled},
	types.OrderStatusConfirmed: {types.OrderStatusPreparing, types.OrderStatusCancelled},
	types.OrderStatusPreparing: {types.OrderStatusReady, types.OrderStatusCancelled},
	types.OrderStatusReady:     {types.OrderStatusDelivered, types.OrderStatusCancelled},
}

// PaymentOutcome reports what applying a gateway payment status did
type PaymentOutcome struct {
	Session *checkout.Session
	// Applied is false when the session was already terminal and the
	// delivery degraded to a detected no-op
	Applied bool
}

// TransitionService is the only writer of checkout session payment statuses
// and order statuses. Status writes and their bound side-effect timestamps
// happen in one transaction; bus events are published only after commit and
// only when a transition actually applied, so replays cannot duplicate side
// effects.
type TransitionService interface {
	// ApplyPaymentOutcome moves a PENDING session to PAID or FAILED based
	// on the gateway-reported status, confirming the owning order on PAID.
	// A session already in a terminal state is a no-op.
	ApplyPaymentOutcome(ctx context.Context, sessionID string, gatewayStatus types.GatewayPaymentStatus, gatewayPaymentID string) (*PaymentOutcome, error)

	// TransitionOrder applies a staff-driven order transition
	TransitionOrder(ctx context.Context, orderID string, to types.OrderStatus) (*order.Order, error)
}

type transitionService struct {
	ServiceParams
}

// NewTransitionService creates the state machine service
func NewTransitionService(params ServiceParams) TransitionService {
	return &transitionService{ServiceParams: params}
}

func (s *transitionService) ApplyPaymentOutcome(ctx context.Context, sessionID string, gatewayStatus types.GatewayPaymentStatus, gatewayPaymentID string) (*PaymentOutcome, error) {
	var target types.PaymentStatus
	switch {
	case gatewayStatus.IsApproved():
		target = types.PaymentStatusPaid
	case gatewayStatus.IsFailure():
		target = types.PaymentStatusFailed
	default:
		return nil, ierr.NewError("gateway status is not terminal").
			WithHintf("Status %s does not settle a payment", gatewayStatus).
			Mark(ierr.ErrInvalidOperation)
	}

	var outcome *PaymentOutcome
	var updatedOrder *order.Order

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		session, err := s.CheckoutRepo.Get(ctx, sessionID)
		if err != nil {
			return err
		}

		if session.PaymentStatus.IsTerminal() {
			// Re-delivery of an already settled payment. Nothing to
			// write, nothing to publish.
			outcome = &PaymentOutcome{Session: session, Applied: false}
			return nil
		}

		now := time.Now().UTC()
		session.PaymentStatus = target
		session.GatewayPaymentID = lo.ToPtr(gatewayPaymentID)
		session.UpdatedAt = now
		switch target {
		case types.PaymentStatusPaid:
			session.PaidAt = lo.ToPtr(now)
		case types.PaymentStatusFailed:
			session.FailedAt = lo.ToPtr(now)
			session.ErrorMessage = lo.ToPtr(string(gatewayStatus))
		}

		if err := s.CheckoutRepo.Update(ctx, session); err != nil {
			return err
		}

		if target == types.PaymentStatusPaid {
			o, err := s.OrderRepo.Get(ctx, session.OrderID)
			if err != nil {
				return err
			}
			// Staff may have confirmed the order before the payment
			// notification landed; that is not a transition error.
			if o.OrderStatus == types.OrderStatusPending {
				if err := s.markOrderStatus(o, types.OrderStatusConfirmed, now); err != nil {
					return err
				}
				if err := s.OrderRepo.Update(ctx, o); err != nil {
					return err
				}
			}
			updatedOrder = o
		}

		outcome = &PaymentOutcome{Session: session, Applied: true}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if outcome.Applied {
		s.publishPaymentEvent(ctx, outcome.Session, updatedOrder, target)
	}
	return outcome, nil
}

func (s *transitionService) TransitionOrder(ctx context.Context, orderID string, to types.OrderStatus) (*order.Order, error) {
	if err := to.Validate(); err != nil {
		return nil, err
	}

	var updated *order.Order
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		o, err := s.OrderRepo.Get(ctx, orderID)
		if err != nil {
			return err
		}

		if err := s.markOrderStatus(o, to, time.Now().UTC()); err != nil {
			return err
		}

		if err := s.OrderRepo.Update(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishOrderEvent(ctx, updated, to)
	return updated, nil
}

// markOrderStatus validates the transition against the table and applies the
// status together with its bound timestamp.
func (s *transitionService) markOrderStatus(o *order.Order, to types.OrderStatus, now time.Time) error {
	allowed := orderTransitions[o.OrderStatus]
	if !lo.Contains(allowed, to) {
		err := ierr.NewError("invalid order transition").
			WithHintf("Cannot transition order from %s to %s", o.OrderStatus, to).
			WithReportableDetails(map[string]any{
				"order_id": o.ID,
				"from":     o.OrderStatus,
				"to":       to,
			}).
			Mark(ierr.ErrInvalidTransition)
		s.Sentry.CaptureException(err)
		return err
	}

	o.OrderStatus = to
	o.UpdatedAt = now
	switch to {
	case types.OrderStatusConfirmed:
		o.ConfirmedAt = lo.ToPtr(now)
	case types.OrderStatusReady:
		o.ReadyAt = lo.ToPtr(now)
	case types.OrderStatusDelivered:
		o.DeliveredAt = lo.ToPtr(now)
	case types.OrderStatusCancelled:
		o.CancelledAt = lo.ToPtr(now)
	}
	return nil
}

func (s *transitionService) publishPaymentEvent(ctx context.Context, session *checkout.Session, o *order.Order, target types.PaymentStatus) {
	eventName := types.EventPaymentSucceeded
	if target == types.PaymentStatusFailed {
		eventName = types.EventPaymentFailed
	}

	payload := handler.PaymentEventPayload{
		CheckoutSessionID: session.ID,
		OrderID:           session.OrderID,
		Amount:            session.Amount.String(),
		Currency:          session.Currency,
	}
	if o != nil {
		payload.OrderNumber = o.OrderNumber
		payload.CustomerName = o.CustomerName
		payload.CustomerEmail = o.CustomerEmail
	}

	event, err := types.NewOutboundEvent(eventName, session.TenantID, payload)
	if err != nil {
		s.Logger.Errorw("failed to build payment event", "error", err, "session_id", session.ID)
		return
	}
	if err := s.EventPublisher.Publish(ctx, event); err != nil {
		s.Logger.Errorw("failed to publish payment event", "error", err, "session_id", session.ID)
	}
}

func (s *transitionService) publishOrderEvent(ctx context.Context, o *order.Order, to types.OrderStatus) {
	var eventName string
	switch to {
	case types.OrderStatusConfirmed:
		eventName = types.EventOrderConfirmed
	case types.OrderStatusReady:
		eventName = types.EventOrderReady
	case types.OrderStatusDelivered:
		eventName = types.EventOrderDelivered
	case types.OrderStatusCancelled:
		eventName = types.EventOrderCancelled
	default:
		return
	}

	event, err := types.NewOutboundEvent(eventName, o.TenantID, o)
	if err != nil {
		s.Logger.Errorw("failed to build order event", "error", err, "order_id", o.ID)
		return
	}
	if err := s.EventPublisher.Publish(ctx, event); err != nil {
		s.Logger.Errorw("failed to publish order event", "error", err, "order_id", o.ID)
	}
}
