package service

import (
	"context"
	"testing"
	"time"

	"github.com/comanda/comanda/internal/domain/checkout"
	"github.com/comanda/comanda/internal/domain/credential"
	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/gateway"
	"github.com/comanda/comanda/internal/testutil"
	"github.com/comanda/comanda/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CredentialResolverSuite struct {
	testutil.BaseServiceTestSuite
	resolver CredentialResolverService
}

func TestCredentialResolver(t *testing.T) {
	suite.Run(t, new(CredentialResolverSuite))
}

func (s *CredentialResolverSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.resolver = NewCredentialResolverService(newTestParams(&s.BaseServiceTestSuite))
}

// seedTenant connects a credential for the tenant and opens one pending
// session with the given age. Returns the plaintext token and the session.
func (s *CredentialResolverSuite) seedTenant(tenantID, token string, age time.Duration) (string, *checkout.Session) {
	ctx := types.SetTenantID(context.Background(), tenantID)

	if token != "" {
		ciphertext, err := s.GetVault().Encrypt(token)
		s.Require().NoError(err)
		cred := credential.New(tenantID, ciphertext, token[len(token)-4:], false, time.Now().UTC())
		s.Require().NoError(s.GetStores().CredentialRepo.Upsert(ctx, cred))
	}

	session := checkout.New(ctx, "ord-"+tenantID, decimal.NewFromInt(1000), "ARS")
	session.CreatedAt = time.Now().UTC().Add(-age)
	session.UpdatedAt = session.CreatedAt
	s.Require().NoError(s.GetStores().CheckoutRepo.Create(ctx, session))
	return token, session
}

func (s *CredentialResolverSuite) TestScanStopsAtFirstMatch() {
	// Tenant activity order, newest first: A, B, C
	tokenA, _ := s.seedTenant("tenant_a", "APP_USR-token-aaaa", 1*time.Minute)
	tokenB, sessionB := s.seedTenant("tenant_b", "APP_USR-token-bbbb", 5*time.Minute)
	tokenC, _ := s.seedTenant("tenant_c", "APP_USR-token-cccc", 10*time.Minute)

	s.GetGateway().RegisterPayment(tokenB, &gateway.PaymentDetail{
		ID:                  "pay-77",
		Status:              types.GatewayPaymentStatusApproved,
		ExternalReferenceID: sessionB.ExternalReferenceID,
	})

	resolved, err := s.resolver.FindTenantForPayment(s.GetContext(), "pay-77")
	s.NoError(err)
	s.Equal("tenant_b", resolved.TenantID)
	s.Equal(tokenB, resolved.AccessToken)
	s.Equal(sessionB.ID, resolved.Session.ID)
	s.Equal(types.GatewayPaymentStatusApproved, resolved.Detail.Status)

	// A was tried before B; C was never consulted
	tokens := lo.Map(s.GetGateway().Calls(), func(c testutil.GatewayCall, _ int) string {
		return c.AccessToken
	})
	s.Equal([]string{tokenA, tokenB}, tokens)
	s.NotContains(tokens, tokenC)
}

func (s *CredentialResolverSuite) TestNoPendingSessionsSkipsGateway() {
	resolved, err := s.resolver.FindTenantForPayment(s.GetContext(), "pay-1")
	s.Nil(resolved)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
	s.Empty(s.GetGateway().Calls())
}

func (s *CredentialResolverSuite) TestSessionsOutsideWindowIgnored() {
	token, session := s.seedTenant("tenant_a", "APP_USR-token-aaaa", 25*time.Hour)
	s.GetGateway().RegisterPayment(token, &gateway.PaymentDetail{
		ID:                  "pay-1",
		Status:              types.GatewayPaymentStatusApproved,
		ExternalReferenceID: session.ExternalReferenceID,
	})

	_, err := s.resolver.FindTenantForPayment(s.GetContext(), "pay-1")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
	s.Empty(s.GetGateway().Calls())
}

func (s *CredentialResolverSuite) TestCorruptCredentialIsSkipped() {
	// Tenant A's stored blob is garbage; B resolves normally
	ctxA := types.SetTenantID(context.Background(), "tenant_a")
	credA := credential.New("tenant_a", "not.a.validblob", "aaaa", false, time.Now().UTC())
	s.Require().NoError(s.GetStores().CredentialRepo.Upsert(ctxA, credA))
	sessionA := checkout.New(ctxA, "ord-a", decimal.NewFromInt(500), "ARS")
	s.Require().NoError(s.GetStores().CheckoutRepo.Create(ctxA, sessionA))

	tokenB, sessionB := s.seedTenant("tenant_b", "APP_USR-token-bbbb", 5*time.Minute)
	s.GetGateway().RegisterPayment(tokenB, &gateway.PaymentDetail{
		ID:                  "pay-9",
		Status:              types.GatewayPaymentStatusApproved,
		ExternalReferenceID: sessionB.ExternalReferenceID,
	})

	resolved, err := s.resolver.FindTenantForPayment(s.GetContext(), "pay-9")
	s.NoError(err)
	s.Equal("tenant_b", resolved.TenantID)
}

func (s *CredentialResolverSuite) TestFallbackCredential() {
	s.GetConfig().Secrets.FallbackAccessToken = "APP_USR-platform-token"
	defer func() { s.GetConfig().Secrets.FallbackAccessToken = "" }()

	// Tenant has a pending session but never connected a credential
	_, session := s.seedTenant("tenant_a", "", 1*time.Minute)
	s.GetGateway().RegisterPayment("APP_USR-platform-token", &gateway.PaymentDetail{
		ID:                  "pay-5",
		Status:              types.GatewayPaymentStatusApproved,
		ExternalReferenceID: session.ExternalReferenceID,
	})

	resolved, err := s.resolver.FindTenantForPayment(s.GetContext(), "pay-5")
	s.NoError(err)
	s.Equal("tenant_a", resolved.TenantID)
	s.Equal("APP_USR-platform-token", resolved.AccessToken)
	s.Equal(session.ID, resolved.Session.ID)
}

func (s *CredentialResolverSuite) TestUnknownPaymentNotFound() {
	s.seedTenant("tenant_a", "APP_USR-token-aaaa", 1*time.Minute)

	resolved, err := s.resolver.FindTenantForPayment(s.GetContext(), "pay-unknown")
	s.Nil(resolved)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
