package webhookevent

import (
	"context"
)

// Repository defines the interface for the inbound notification ledger.
type Repository interface {
	// Create inserts a ledger row. A duplicate event key must surface as an
	// already-exists error from the storage layer's unique constraint, not
	// from a prior read.
	Create(ctx context.Context, event *WebhookEvent) error

	// UpdatePayload overwrites the stored payload of an existing row; used
	// best-effort for observability on duplicate deliveries.
	UpdatePayload(ctx context.Context, eventKey string, rawPayload []byte) error

	GetByKey(ctx context.Context, eventKey string) (*WebhookEvent, error)
}
