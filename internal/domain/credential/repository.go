package credential

import (
	"context"
)

// Repository defines the interface for credential persistence. A tenant has
// at most one credential; Upsert replaces on re-connect.
type Repository interface {
	Upsert(ctx context.Context, cred *Credential) error
	GetByTenant(ctx context.Context, tenantID string) (*Credential, error)
	DeleteByTenant(ctx context.Context, tenantID string) error
}
