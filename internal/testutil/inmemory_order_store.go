package testutil

import (
	"context"

	"github.com/comanda/comanda/internal/domain/order"
	ierr "github.com/comanda/comanda/internal/errors"
)

// InMemoryOrderStore implements order.Repository
type InMemoryOrderStore struct {
	*InMemoryStore[*order.Order]
}

// NewInMemoryOrderStore creates a new in-memory order repository
func NewInMemoryOrderStore() *InMemoryOrderStore {
	return &InMemoryOrderStore{
		InMemoryStore: NewInMemoryStore[*order.Order](),
	}
}

func (m *InMemoryOrderStore) Create(ctx context.Context, o *order.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}

	copied := *o
	if err := m.InMemoryStore.Create(ctx, o.ID, &copied); err != nil {
		return ierr.NewError("order already exists").
			WithHint("Order already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (m *InMemoryOrderStore) Get(ctx context.Context, id string) (*order.Order, error) {
	o, err := m.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("order not found").
			WithHintf("Order %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	copied := *o
	return &copied, nil
}

func (m *InMemoryOrderStore) Update(ctx context.Context, o *order.Order) error {
	copied := *o
	if err := m.InMemoryStore.Update(ctx, o.ID, &copied); err != nil {
		return ierr.NewError("order not found").
			WithHintf("Order %s does not exist", o.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (m *InMemoryOrderStore) ListByTenant(ctx context.Context, tenantID string) ([]*order.Order, error) {
	return m.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, o *order.Order, _ interface{}) bool {
			return o.TenantID == tenantID
		},
		func(i, j *order.Order) bool {
			return i.CreatedAt.After(j.CreatedAt)
		})
}
