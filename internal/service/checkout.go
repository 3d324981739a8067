package service

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/comanda/comanda/internal/domain/checkout"
	"github.com/comanda/comanda/internal/domain/order"
	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/gateway"
	"github.com/comanda/comanda/internal/types"
)

// CheckoutService opens payment sessions for orders. The session id is the
// external reference handed to the gateway and echoed back by notifications.
type CheckoutService interface {
	Create(ctx context.Context, orderID string) (*checkout.Session, error)
	Get(ctx context.Context, id string) (*checkout.Session, error)
}

type checkoutService struct {
	ServiceParams
}

// NewCheckoutService creates the checkout service
func NewCheckoutService(params ServiceParams) CheckoutService {
	return &checkoutService{ServiceParams: params}
}

func (s *checkoutService) Create(ctx context.Context, orderID string) (*checkout.Session, error) {
	if err := types.ValidateTenantContext(ctx); err != nil {
		return nil, err
	}

	o, err := s.OrderRepo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.TenantID != types.GetTenantID(ctx) {
		return nil, ierr.NewError("order belongs to another tenant").
			WithHint("Order not found").
			Mark(ierr.ErrNotFound)
	}
	if o.OrderStatus.IsTerminal() {
		return nil, ierr.NewError("order is closed").
			WithHintf("Cannot open a checkout for a %s order", o.OrderStatus).
			Mark(ierr.ErrInvalidOperation)
	}

	token, err := s.resolveToken(ctx)
	if err != nil {
		return nil, err
	}

	session := checkout.New(ctx, o.ID, o.Total, o.Currency)

	pref, err := s.Gateway.CreatePreference(ctx, s.buildPreferenceRequest(session, o), token)
	if err != nil {
		return nil, err
	}

	session.PreferenceID = lo.ToPtr(pref.ID)
	session.InitPointURL = lo.ToPtr(pref.InitPointURL)

	if err := s.CheckoutRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	s.Logger.Infow("checkout session created",
		"session_id", session.ID,
		"order_id", o.ID,
		"tenant_id", session.TenantID,
	)
	return session, nil
}

func (s *checkoutService) Get(ctx context.Context, id string) (*checkout.Session, error) {
	session, err := s.CheckoutRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenantID := types.GetTenantID(ctx); tenantID != "" && session.TenantID != tenantID {
		return nil, ierr.NewError("checkout session belongs to another tenant").
			WithHint("Checkout session not found").
			Mark(ierr.ErrNotFound)
	}
	return session, nil
}

// resolveToken decrypts the tenant credential, falling back to the platform
// credential when the tenant has not connected its own.
func (s *checkoutService) resolveToken(ctx context.Context) (string, error) {
	cred, err := s.CredentialRepo.GetByTenant(ctx, types.GetTenantID(ctx))
	if err != nil {
		if ierr.IsNotFound(err) && s.Config.Secrets.FallbackAccessToken != "" {
			return s.Config.Secrets.FallbackAccessToken, nil
		}
		return "", err
	}
	return s.Vault.Decrypt(cred.Ciphertext)
}

func (s *checkoutService) buildPreferenceRequest(session *checkout.Session, o *order.Order) *gateway.PreferenceRequest {
	items := lo.Map(o.Items, func(item order.Item, _ int) gateway.PreferenceItem {
		return gateway.PreferenceItem{
			Title:     item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Currency:  o.Currency,
		}
	})

	publicURL := s.Config.Server.PublicURL
	return &gateway.PreferenceRequest{
		Items:               items,
		ExternalReferenceID: session.ExternalReferenceID,
		NotificationURL:     fmt.Sprintf("%s/v1/webhooks/mercadopago", publicURL),
		BackURLs: gateway.BackURLs{
			Success: fmt.Sprintf("%s/checkout/%s/success", publicURL, session.ID),
			Pending: fmt.Sprintf("%s/checkout/%s/pending", publicURL, session.ID),
			Failure: fmt.Sprintf("%s/checkout/%s/failure", publicURL, session.ID),
		},
	}
}
