package service

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/comanda/comanda/internal/domain/checkout"
	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/types"
)

// ResolvedPayment is the result of matching a processor payment id to a
// tenant, its credential and the pending checkout session it settles. The
// access token is decrypted plaintext held transiently for the follow-up
// gateway call; it must never be logged or persisted.
type ResolvedPayment struct {
	TenantID    string
	AccessToken string
	Session     *checkout.Session
	Detail      *gatewayDetail
}

type gatewayDetail struct {
	ID                  string
	Status              types.GatewayPaymentStatus
	ExternalReferenceID string
}

// CredentialResolverService finds which tenant a payment notification
// belongs to when the notification carries no tenant identifier. The
// processor API cannot list payments tenant-agnostically, so the resolver
// tries each candidate tenant's credential against a bounded recent window
// of pending sessions, newest tenants first, and short-circuits on the
// first match. Worst case is one gateway call per candidate tenant; the
// window and the early exit are the bound, deliberately not a credential
// cache that could mask stale tokens.
type CredentialResolverService interface {
	FindTenantForPayment(ctx context.Context, paymentID string) (*ResolvedPayment, error)
}

type credentialResolver struct {
	ServiceParams
}

// NewCredentialResolverService creates the resolver
func NewCredentialResolverService(params ServiceParams) CredentialResolverService {
	return &credentialResolver{ServiceParams: params}
}

func (s *credentialResolver) FindTenantForPayment(ctx context.Context, paymentID string) (*ResolvedPayment, error) {
	window := s.Config.Webhook.PendingWindow
	if window <= 0 {
		window = 24 * time.Hour
	}

	pending, err := s.CheckoutRepo.ListPending(ctx, &checkout.PendingFilter{
		CreatedAfter: time.Now().UTC().Add(-window),
	})
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, s.notFound(paymentID)
	}

	// pending is newest-first, so tenant order by first appearance is
	// most-recently-active first
	byTenant := lo.GroupBy(pending, func(sess *checkout.Session) string {
		return sess.TenantID
	})
	tenantOrder := lo.Uniq(lo.Map(pending, func(sess *checkout.Session, _ int) string {
		return sess.TenantID
	}))

	for _, tenantID := range tenantOrder {
		resolved, ok := s.tryTenant(ctx, tenantID, paymentID, byTenant[tenantID])
		if ok {
			return resolved, nil
		}
	}

	// No tenant-scoped credential matched; try the platform-wide fallback
	// once, against the full pending set.
	if resolved, ok := s.tryFallback(ctx, paymentID, pending); ok {
		return resolved, nil
	}

	return nil, s.notFound(paymentID)
}

// tryTenant asks the gateway about the payment using this tenant's
// credential and matches the echoed external reference against the tenant's
// own pending sessions.
func (s *credentialResolver) tryTenant(ctx context.Context, tenantID, paymentID string, sessions []*checkout.Session) (*ResolvedPayment, bool) {
	cred, err := s.CredentialRepo.GetByTenant(ctx, tenantID)
	if err != nil {
		if !ierr.IsNotFound(err) {
			s.Logger.Errorw("failed to load tenant credential",
				"error", err,
				"tenant_id", tenantID,
			)
		}
		return nil, false
	}

	token, err := s.Vault.Decrypt(cred.Ciphertext)
	if err != nil {
		// A credential that was stored successfully and now fails its
		// integrity check is operator-attention material.
		s.Logger.Errorw("stored credential failed integrity check",
			"error", err,
			"tenant_id", tenantID,
			"credential_id", cred.ID,
		)
		if ierr.IsIntegrity(err) {
			s.Sentry.CaptureException(err)
		}
		return nil, false
	}

	detail, err := s.Gateway.GetPaymentDetail(ctx, paymentID, token)
	if err != nil {
		// Not found, timeout or gateway failure: all non-matches for this
		// credential, keep scanning.
		s.Logger.Debugw("credential did not resolve payment",
			"tenant_id", tenantID,
			"payment_id", paymentID,
			"reason", err.Error(),
		)
		return nil, false
	}

	match := s.matchSession(sessions, detail.ExternalReferenceID, paymentID)
	if match == nil {
		return nil, false
	}

	return &ResolvedPayment{
		TenantID:    tenantID,
		AccessToken: token,
		Session:     match,
		Detail: &gatewayDetail{
			ID:                  detail.ID,
			Status:              detail.Status,
			ExternalReferenceID: detail.ExternalReferenceID,
		},
	}, true
}

func (s *credentialResolver) tryFallback(ctx context.Context, paymentID string, pending []*checkout.Session) (*ResolvedPayment, bool) {
	token := s.Config.Secrets.FallbackAccessToken
	if token == "" {
		return nil, false
	}

	detail, err := s.Gateway.GetPaymentDetail(ctx, paymentID, token)
	if err != nil {
		s.Logger.Debugw("fallback credential did not resolve payment",
			"payment_id", paymentID,
			"reason", err.Error(),
		)
		return nil, false
	}

	match := s.matchSession(pending, detail.ExternalReferenceID, paymentID)
	if match == nil {
		return nil, false
	}

	return &ResolvedPayment{
		TenantID:    match.TenantID,
		AccessToken: token,
		Session:     match,
		Detail: &gatewayDetail{
			ID:                  detail.ID,
			Status:              detail.Status,
			ExternalReferenceID: detail.ExternalReferenceID,
		},
	}, true
}

// matchSession finds the pending session with the given external reference.
// The reference is unique by construction; more than one match is a data
// integrity bug, logged and resolved to the newest session rather than
// silently ignored.
func (s *credentialResolver) matchSession(sessions []*checkout.Session, externalReferenceID, paymentID string) *checkout.Session {
	if externalReferenceID == "" {
		return nil
	}

	matches := lo.Filter(sessions, func(sess *checkout.Session, _ int) bool {
		return sess.ExternalReferenceID == externalReferenceID
	})
	if len(matches) == 0 {
		return nil
	}
	if len(matches) > 1 {
		s.Logger.Errorw("multiple pending sessions share an external reference",
			"external_reference_id", externalReferenceID,
			"payment_id", paymentID,
			"count", len(matches),
		)
	}
	// sessions are newest-first, so matches[0] is the most recent
	return matches[0]
}

func (s *credentialResolver) notFound(paymentID string) error {
	return ierr.NewError("no tenant matched payment").
		WithHintf("Payment %s could not be attributed to any tenant", paymentID).
		Mark(ierr.ErrNotFound)
}
