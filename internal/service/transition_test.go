package service

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/comanda/comanda/internal/domain/checkout"
	"github.com/comanda/comanda/internal/domain/order"
	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/testutil"
	"github.com/comanda/comanda/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TransitionServiceSuite struct {
	testutil.BaseServiceTestSuite
	transitions TransitionService
}

func TestTransitionService(t *testing.T) {
	suite.Run(t, new(TransitionServiceSuite))
}

func (s *TransitionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.transitions = NewTransitionService(newTestParams(&s.BaseServiceTestSuite))
}

func (s *TransitionServiceSuite) seedOrderAndSession() (*order.Order, *checkout.Session) {
	o := order.New(s.GetContext(), types.OrderTypeDineIn, "Ada", []order.Item{
		{Name: "Milanesa", Quantity: 1, UnitPrice: decimal.NewFromInt(1500)},
	}, "ARS")
	s.Require().NoError(s.GetStores().OrderRepo.Create(s.GetContext(), o))

	session := checkout.New(s.GetContext(), o.ID, o.Total, o.Currency)
	s.Require().NoError(s.GetStores().CheckoutRepo.Create(s.GetContext(), session))
	return o, session
}

func (s *TransitionServiceSuite) TestApprovedPaymentMarksSessionPaid() {
	o, session := s.seedOrderAndSession()

	outcome, err := s.transitions.ApplyPaymentOutcome(s.GetContext(), session.ID, types.GatewayPaymentStatusApproved, "pay-1")
	s.NoError(err)
	s.True(outcome.Applied)
	s.Equal(types.PaymentStatusPaid, outcome.Session.PaymentStatus)
	s.NotNil(outcome.Session.PaidAt)
	s.Equal("pay-1", *outcome.Session.GatewayPaymentID)

	// The owning order was confirmed in the same write
	stored, err := s.GetStores().OrderRepo.Get(s.GetContext(), o.ID)
	s.NoError(err)
	s.Equal(types.OrderStatusConfirmed, stored.OrderStatus)
	s.NotNil(stored.ConfirmedAt)

	events := s.GetPublisher().EventsNamed(types.EventPaymentSucceeded)
	s.Len(events, 1)
	s.Equal(types.DefaultTenantID, events[0].TenantID)
}

func (s *TransitionServiceSuite) TestReplayIsIdempotent() {
	_, session := s.seedOrderAndSession()

	first, err := s.transitions.ApplyPaymentOutcome(s.GetContext(), session.ID, types.GatewayPaymentStatusApproved, "pay-1")
	s.NoError(err)
	s.True(first.Applied)
	paidAt := *first.Session.PaidAt

	second, err := s.transitions.ApplyPaymentOutcome(s.GetContext(), session.ID, types.GatewayPaymentStatusApproved, "pay-1")
	s.NoError(err)
	s.False(second.Applied)
	s.Equal(paidAt, *second.Session.PaidAt)

	// No second event was published
	s.Len(s.GetPublisher().EventsNamed(types.EventPaymentSucceeded), 1)
}

func (s *TransitionServiceSuite) TestRejectedPaymentMarksSessionFailed() {
	o, session := s.seedOrderAndSession()

	outcome, err := s.transitions.ApplyPaymentOutcome(s.GetContext(), session.ID, types.GatewayPaymentStatusRejected, "pay-2")
	s.NoError(err)
	s.True(outcome.Applied)
	s.Equal(types.PaymentStatusFailed, outcome.Session.PaymentStatus)
	s.NotNil(outcome.Session.FailedAt)
	s.Nil(outcome.Session.PaidAt)
	s.Equal(string(types.GatewayPaymentStatusRejected), *outcome.Session.ErrorMessage)

	// A failed payment does not confirm the order
	stored, err := s.GetStores().OrderRepo.Get(s.GetContext(), o.ID)
	s.NoError(err)
	s.Equal(types.OrderStatusPending, stored.OrderStatus)

	s.Len(s.GetPublisher().EventsNamed(types.EventPaymentFailed), 1)
}

func (s *TransitionServiceSuite) TestNonTerminalGatewayStatusRejected() {
	_, session := s.seedOrderAndSession()

	_, err := s.transitions.ApplyPaymentOutcome(s.GetContext(), session.ID, types.GatewayPaymentStatusInProcess, "pay-3")
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	stored, err := s.GetStores().CheckoutRepo.Get(s.GetContext(), session.ID)
	s.NoError(err)
	s.Equal(types.PaymentStatusPending, stored.PaymentStatus)
}

func (s *TransitionServiceSuite) TestPreConfirmedOrderIsNotATransitionError() {
	o, session := s.seedOrderAndSession()

	// Staff confirmed before the payment notification landed
	_, err := s.transitions.TransitionOrder(s.GetContext(), o.ID, types.OrderStatusConfirmed)
	s.NoError(err)

	outcome, err := s.transitions.ApplyPaymentOutcome(s.GetContext(), session.ID, types.GatewayPaymentStatusApproved, "pay-4")
	s.NoError(err)
	s.True(outcome.Applied)
}

func (s *TransitionServiceSuite) TestOrderLifecycle() {
	o, _ := s.seedOrderAndSession()

	for _, to := range []types.OrderStatus{
		types.OrderStatusConfirmed,
		types.OrderStatusPreparing,
		types.OrderStatusReady,
		types.OrderStatusDelivered,
	} {
		updated, err := s.transitions.TransitionOrder(s.GetContext(), o.ID, to)
		s.Require().NoError(err, "transition to %s", to)
		s.Equal(to, updated.OrderStatus)
	}

	stored, err := s.GetStores().OrderRepo.Get(s.GetContext(), o.ID)
	s.NoError(err)
	s.NotNil(stored.ConfirmedAt)
	s.NotNil(stored.ReadyAt)
	s.NotNil(stored.DeliveredAt)

	s.Len(s.GetPublisher().EventsNamed(types.EventOrderConfirmed), 1)
	s.Len(s.GetPublisher().EventsNamed(types.EventOrderReady), 1)
	s.Len(s.GetPublisher().EventsNamed(types.EventOrderDelivered), 1)
}

func (s *TransitionServiceSuite) TestCancellableFromAnyNonTerminalState() {
	o, _ := s.seedOrderAndSession()

	_, err := s.transitions.TransitionOrder(s.GetContext(), o.ID, types.OrderStatusConfirmed)
	s.Require().NoError(err)
	_, err = s.transitions.TransitionOrder(s.GetContext(), o.ID, types.OrderStatusPreparing)
	s.Require().NoError(err)

	updated, err := s.transitions.TransitionOrder(s.GetContext(), o.ID, types.OrderStatusCancelled)
	s.NoError(err)
	s.Equal(types.OrderStatusCancelled, updated.OrderStatus)
	s.NotNil(updated.CancelledAt)
}

func (s *TransitionServiceSuite) TestInvalidTransitionNamesBothStates() {
	o, _ := s.seedOrderAndSession()

	// PENDING cannot jump straight to READY
	_, err := s.transitions.TransitionOrder(s.GetContext(), o.ID, types.OrderStatusReady)
	s.Error(err)
	s.True(ierr.IsInvalidTransition(err))
	hint := errors.FlattenHints(err)
	s.Contains(hint, string(types.OrderStatusPending))
	s.Contains(hint, string(types.OrderStatusReady))

	// The failed attempt left the order untouched
	stored, getErr := s.GetStores().OrderRepo.Get(s.GetContext(), o.ID)
	s.NoError(getErr)
	s.Equal(types.OrderStatusPending, stored.OrderStatus)
}

func (s *TransitionServiceSuite) TestTerminalOrderCannotTransition() {
	o, _ := s.seedOrderAndSession()

	_, err := s.transitions.TransitionOrder(s.GetContext(), o.ID, types.OrderStatusCancelled)
	s.Require().NoError(err)

	_, err = s.transitions.TransitionOrder(s.GetContext(), o.ID, types.OrderStatusConfirmed)
	s.Error(err)
	s.True(ierr.IsInvalidTransition(err))
}
