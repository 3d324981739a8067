package checkout

import (
	"context"
	"time"
)

// PendingFilter bounds the credential resolver's scan over recent sessions
type PendingFilter struct {
	// CreatedAfter excludes sessions older than the recency window
	CreatedAfter time.Time
}

// Repository defines the interface for checkout session persistence
type Repository interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	GetByExternalReference(ctx context.Context, externalReferenceID string) (*Session, error)
	Update(ctx context.Context, session *Session) error

	// ListPending returns PENDING sessions created within the filter window
	// across all tenants, newest first.
	ListPending(ctx context.Context, filter *PendingFilter) ([]*Session, error)
}
