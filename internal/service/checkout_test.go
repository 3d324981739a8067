package service

import (
	"context"
	"testing"

	"github.com/comanda/comanda/internal/domain/order"
	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/testutil"
	"github.com/comanda/comanda/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CheckoutServiceSuite struct {
	testutil.BaseServiceTestSuite
	service     CheckoutService
	credentials CredentialService
	transitions TransitionService
}

func TestCheckoutService(t *testing.T) {
	suite.Run(t, new(CheckoutServiceSuite))
}

func (s *CheckoutServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newTestParams(&s.BaseServiceTestSuite)
	s.service = NewCheckoutService(params)
	s.credentials = NewCredentialService(params)
	s.transitions = NewTransitionService(params)
}

func (s *CheckoutServiceSuite) seedOrder() *order.Order {
	o := order.New(s.GetContext(), types.OrderTypeDelivery, "Leo", []order.Item{
		{Name: "Pizza", Quantity: 2, UnitPrice: decimal.NewFromInt(2000)},
	}, "ARS")
	s.Require().NoError(s.GetStores().OrderRepo.Create(s.GetContext(), o))
	return o
}

func (s *CheckoutServiceSuite) TestCreateWithTenantCredential() {
	_, err := s.credentials.Connect(s.GetContext(), "APP_USR-tenant-token", false)
	s.Require().NoError(err)
	o := s.seedOrder()

	session, err := s.service.Create(s.GetContext(), o.ID)
	s.NoError(err)
	s.Equal(o.ID, session.OrderID)
	s.Equal(session.ID, session.ExternalReferenceID)
	s.True(session.Amount.Equal(decimal.NewFromInt(4000)))
	s.Equal(types.PaymentStatusPending, session.PaymentStatus)
	s.NotNil(session.PreferenceID)
	s.NotNil(session.InitPointURL)
	s.NotEmpty(*session.InitPointURL)
}

func (s *CheckoutServiceSuite) TestCreateWithFallbackCredential() {
	s.GetConfig().Secrets.FallbackAccessToken = "APP_USR-platform"
	defer func() { s.GetConfig().Secrets.FallbackAccessToken = "" }()
	o := s.seedOrder()

	session, err := s.service.Create(s.GetContext(), o.ID)
	s.NoError(err)
	s.NotNil(session.InitPointURL)
}

func (s *CheckoutServiceSuite) TestCreateWithoutAnyCredential() {
	o := s.seedOrder()

	_, err := s.service.Create(s.GetContext(), o.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *CheckoutServiceSuite) TestCreateForClosedOrder() {
	_, err := s.credentials.Connect(s.GetContext(), "APP_USR-tenant-token", false)
	s.Require().NoError(err)
	o := s.seedOrder()

	_, err = s.transitions.TransitionOrder(s.GetContext(), o.ID, types.OrderStatusCancelled)
	s.Require().NoError(err)

	_, err = s.service.Create(s.GetContext(), o.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *CheckoutServiceSuite) TestCreateForForeignOrder() {
	_, err := s.credentials.Connect(s.GetContext(), "APP_USR-tenant-token", false)
	s.Require().NoError(err)

	otherCtx := types.SetTenantID(context.Background(), "tenant_other")
	o := order.New(otherCtx, types.OrderTypeTakeaway, "Mia", []order.Item{
		{Name: "Flan", Quantity: 1, UnitPrice: decimal.NewFromInt(800)},
	}, "ARS")
	s.Require().NoError(s.GetStores().OrderRepo.Create(otherCtx, o))

	// Cross-tenant access surfaces as not-found, not forbidden
	_, err = s.service.Create(s.GetContext(), o.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *CheckoutServiceSuite) TestGetScopedToTenant() {
	_, err := s.credentials.Connect(s.GetContext(), "APP_USR-tenant-token", false)
	s.Require().NoError(err)
	o := s.seedOrder()

	session, err := s.service.Create(s.GetContext(), o.ID)
	s.Require().NoError(err)

	got, err := s.service.Get(s.GetContext(), session.ID)
	s.NoError(err)
	s.Equal(session.ID, got.ID)

	otherCtx := types.SetTenantID(context.Background(), "tenant_other")
	_, err = s.service.Get(otherCtx, session.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
