package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/comanda/comanda/internal/domain/checkout"
	"github.com/comanda/comanda/internal/domain/credential"
	"github.com/comanda/comanda/internal/domain/order"
	"github.com/comanda/comanda/internal/gateway"
	"github.com/comanda/comanda/internal/testutil"
	"github.com/comanda/comanda/internal/types"
	"github.com/comanda/comanda/internal/webhook"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const reconcilerTestSecret = "whsec_reconciler_test"

type WebhookReconcilerSuite struct {
	testutil.BaseServiceTestSuite
	reconciler  WebhookReconcilerService
	transitions TransitionService
}

func TestWebhookReconciler(t *testing.T) {
	suite.Run(t, new(WebhookReconcilerSuite))
}

func (s *WebhookReconcilerSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.GetConfig().Secrets.WebhookSecret = reconcilerTestSecret

	params := newTestParams(&s.BaseServiceTestSuite)
	s.transitions = NewTransitionService(params)
	s.reconciler = NewWebhookReconcilerService(
		params,
		webhook.NewSignatureVerifier(s.GetConfig(), s.GetLogger()),
		NewEventLedgerService(params),
		NewCredentialResolverService(params),
		s.transitions,
	)
}

// signedInput builds a correctly signed payment notification
func (s *WebhookReconcilerSuite) signedInput(notificationID string) *WebhookInput {
	requestID := types.GenerateUUID()
	ts := time.Now().UTC().Unix()
	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%d;", notificationID, requestID, ts)
	mac := hmac.New(sha256.New, []byte(reconcilerTestSecret))
	mac.Write([]byte(manifest))

	return &WebhookInput{
		RawBody:          []byte(fmt.Sprintf(`{"type":"payment","data":{"id":"%s"}}`, notificationID)),
		SignatureHeader:  fmt.Sprintf("ts=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil))),
		RequestID:        requestID,
		NotificationType: "payment",
		NotificationID:   notificationID,
	}
}

// seedPaidScenario sets up a tenant with a credential, a pending order and
// session, and registers the gateway payment that settles it
func (s *WebhookReconcilerSuite) seedPaidScenario(tenantID, paymentID string, status types.GatewayPaymentStatus) (*order.Order, string) {
	ctx := types.SetTenantID(context.Background(), tenantID)
	token := "APP_USR-" + tenantID

	ciphertext, err := s.GetVault().Encrypt(token)
	s.Require().NoError(err)
	cred := credential.New(tenantID, ciphertext, token[len(token)-4:], false, time.Now().UTC())
	s.Require().NoError(s.GetStores().CredentialRepo.Upsert(ctx, cred))

	o := order.New(ctx, types.OrderTypeTakeaway, "Nina", []order.Item{
		{Name: "Empanadas", Quantity: 6, UnitPrice: decimal.NewFromInt(300)},
	}, "ARS")
	s.Require().NoError(s.GetStores().OrderRepo.Create(ctx, o))

	session := checkout.New(ctx, o.ID, o.Total, o.Currency)
	s.Require().NoError(s.GetStores().CheckoutRepo.Create(ctx, session))

	s.GetGateway().RegisterPayment(token, &gateway.PaymentDetail{
		ID:                  paymentID,
		Status:              status,
		ExternalReferenceID: session.ExternalReferenceID,
	})
	return o, session.ID
}

func (s *WebhookReconcilerSuite) TestSuccessfulReconciliation() {
	o, sessionID := s.seedPaidScenario("tenant_a", "pay-100", types.GatewayPaymentStatusApproved)

	result := s.reconciler.Handle(s.GetContext(), s.signedInput("pay-100"))

	s.True(result.Received)
	s.True(result.Processed)
	s.False(result.Duplicate)
	s.Equal("approved", result.Status)
	s.Equal(sessionID, result.CheckoutSessionID)
	s.Empty(result.Error)

	session, err := s.GetStores().CheckoutRepo.Get(s.GetContext(), sessionID)
	s.NoError(err)
	s.Equal(types.PaymentStatusPaid, session.PaymentStatus)

	stored, err := s.GetStores().OrderRepo.Get(s.GetContext(), o.ID)
	s.NoError(err)
	s.Equal(types.OrderStatusConfirmed, stored.OrderStatus)

	s.Len(s.GetPublisher().EventsNamed(types.EventPaymentSucceeded), 1)
}

func (s *WebhookReconcilerSuite) TestExactReplayIsDeduplicated() {
	_, sessionID := s.seedPaidScenario("tenant_a", "pay-100", types.GatewayPaymentStatusApproved)
	input := s.signedInput("pay-100")

	first := s.reconciler.Handle(s.GetContext(), input)
	s.True(first.Processed)

	second := s.reconciler.Handle(s.GetContext(), input)
	s.True(second.Received)
	s.False(second.Processed)
	s.True(second.Duplicate)

	// One ledger row, one event, one settled session
	store := s.GetStores().WebhookEventRepo.(*testutil.InMemoryWebhookEventStore)
	s.Equal(1, store.Count())
	s.Len(s.GetPublisher().EventsNamed(types.EventPaymentSucceeded), 1)

	session, err := s.GetStores().CheckoutRepo.Get(s.GetContext(), sessionID)
	s.NoError(err)
	s.Equal(types.PaymentStatusPaid, session.PaymentStatus)
}

func (s *WebhookReconcilerSuite) TestRetryWithFreshSignatureIsDeduplicated() {
	s.seedPaidScenario("tenant_a", "pay-100", types.GatewayPaymentStatusApproved)

	first := s.reconciler.Handle(s.GetContext(), s.signedInput("pay-100"))
	s.True(first.Processed)

	// A processor retry carries the same notification id but a fresh
	// request id and signature; the ledger key is what dedupes it
	second := s.reconciler.Handle(s.GetContext(), s.signedInput("pay-100"))
	s.True(second.Received)
	s.False(second.Processed)
	s.True(second.Duplicate)

	s.Len(s.GetPublisher().EventsNamed(types.EventPaymentSucceeded), 1)
}

func (s *WebhookReconcilerSuite) TestInvalidSignatureIsAckedAndDropped() {
	s.seedPaidScenario("tenant_a", "pay-100", types.GatewayPaymentStatusApproved)

	input := s.signedInput("pay-100")
	input.SignatureHeader = "ts=1,v1=deadbeef"

	result := s.reconciler.Handle(s.GetContext(), input)

	s.True(result.Received)
	s.False(result.Processed)
	s.Equal(webhook.ReasonSignatureMismatch, result.Error)

	// Nothing was recorded or touched
	store := s.GetStores().WebhookEventRepo.(*testutil.InMemoryWebhookEventStore)
	s.Equal(0, store.Count())
	s.Empty(s.GetGateway().Calls())
}

func (s *WebhookReconcilerSuite) TestNonPaymentNotificationIgnored() {
	input := s.signedInput("merch-1")
	input.NotificationType = "merchant_order"

	result := s.reconciler.Handle(s.GetContext(), input)

	s.True(result.Received)
	s.False(result.Processed)
	s.Empty(result.Error)

	// Still recorded in the ledger for audit
	store := s.GetStores().WebhookEventRepo.(*testutil.InMemoryWebhookEventStore)
	s.Equal(1, store.Count())
}

func (s *WebhookReconcilerSuite) TestUnattributablePayment() {
	result := s.reconciler.Handle(s.GetContext(), s.signedInput("pay-unknown"))

	s.True(result.Received)
	s.False(result.Processed)
	s.Equal("no_match", result.Error)
}

func (s *WebhookReconcilerSuite) TestUnapprovedPaymentLeavesSessionPending() {
	_, sessionID := s.seedPaidScenario("tenant_a", "pay-200", types.GatewayPaymentStatusInProcess)

	result := s.reconciler.Handle(s.GetContext(), s.signedInput("pay-200"))

	s.True(result.Received)
	s.False(result.Processed)
	s.Equal("in_process", result.Status)
	s.Equal(sessionID, result.CheckoutSessionID)

	session, err := s.GetStores().CheckoutRepo.Get(s.GetContext(), sessionID)
	s.NoError(err)
	s.Equal(types.PaymentStatusPending, session.PaymentStatus)
	s.Empty(s.GetPublisher().Events())
}
