package service

import (
	"context"
	"time"

	"github.com/comanda/comanda/internal/domain/credential"
	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/types"
)

// CredentialService manages tenant payment-processor credentials. Tokens are
// encrypted before they touch the repository and the stored ciphertext never
// leaves this package in decrypted form except through the resolver.
type CredentialService interface {
	// Connect encrypts and stores a tenant's processor access token,
	// replacing any previous one
	Connect(ctx context.Context, accessToken string, sandbox bool) (*credential.Credential, error)

	// Get returns the tenant's credential metadata (never the token)
	Get(ctx context.Context) (*credential.Credential, error)

	// Disconnect removes the tenant's credential
	Disconnect(ctx context.Context) error
}

type credentialService struct {
	ServiceParams
}

// NewCredentialService creates the credential management service
func NewCredentialService(params ServiceParams) CredentialService {
	return &credentialService{ServiceParams: params}
}

func (s *credentialService) Connect(ctx context.Context, accessToken string, sandbox bool) (*credential.Credential, error) {
	if err := types.ValidateTenantContext(ctx); err != nil {
		return nil, err
	}
	if len(accessToken) < 8 {
		return nil, ierr.NewError("access token too short").
			WithHint("Provide the processor access token for this restaurant").
			Mark(ierr.ErrValidation)
	}

	ciphertext, err := s.Vault.Encrypt(accessToken)
	if err != nil {
		return nil, err
	}

	tenantID := types.GetTenantID(ctx)
	cred := credential.New(
		tenantID,
		ciphertext,
		accessToken[len(accessToken)-4:],
		sandbox,
		time.Now().UTC(),
	)
	cred.CreatedBy = types.GetUserID(ctx)
	cred.UpdatedBy = types.GetUserID(ctx)

	if err := s.CredentialRepo.Upsert(ctx, cred); err != nil {
		return nil, err
	}

	s.Logger.Infow("tenant credential connected",
		"tenant_id", tenantID,
		"last4", cred.Last4,
		"sandbox", cred.Sandbox,
	)
	return cred, nil
}

func (s *credentialService) Get(ctx context.Context) (*credential.Credential, error) {
	if err := types.ValidateTenantContext(ctx); err != nil {
		return nil, err
	}
	return s.CredentialRepo.GetByTenant(ctx, types.GetTenantID(ctx))
}

func (s *credentialService) Disconnect(ctx context.Context) error {
	if err := types.ValidateTenantContext(ctx); err != nil {
		return err
	}
	tenantID := types.GetTenantID(ctx)
	if err := s.CredentialRepo.DeleteByTenant(ctx, tenantID); err != nil {
		return err
	}
	s.Logger.Infow("tenant credential disconnected", "tenant_id", tenantID)
	return nil
}
