package order

import (
	"context"
)

// Repository defines the interface for order persistence
type Repository interface {
	Create(ctx context.Context, order *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	Update(ctx context.Context, order *Order) error
	ListByTenant(ctx context.Context, tenantID string) ([]*Order, error)
}
