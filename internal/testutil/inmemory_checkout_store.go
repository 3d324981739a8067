package testutil

import (
	"context"

	"github.com/comanda/comanda/internal/domain/checkout"
	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/types"
)

// InMemoryCheckoutStore implements checkout.Repository
type InMemoryCheckoutStore struct {
	*InMemoryStore[*checkout.Session]
}

// NewInMemoryCheckoutStore creates a new in-memory checkout repository
func NewInMemoryCheckoutStore() *InMemoryCheckoutStore {
	return &InMemoryCheckoutStore{
		InMemoryStore: NewInMemoryStore[*checkout.Session](),
	}
}

func (m *InMemoryCheckoutStore) Create(ctx context.Context, session *checkout.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}

	copied := *session
	if err := m.InMemoryStore.Create(ctx, session.ID, &copied); err != nil {
		return ierr.NewError("checkout session already exists").
			WithHint("Checkout session already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (m *InMemoryCheckoutStore) Get(ctx context.Context, id string) (*checkout.Session, error) {
	session, err := m.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("checkout session not found").
			WithHintf("Checkout session %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	copied := *session
	return &copied, nil
}

func (m *InMemoryCheckoutStore) GetByExternalReference(ctx context.Context, externalReferenceID string) (*checkout.Session, error) {
	sessions, _ := m.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, s *checkout.Session, _ interface{}) bool {
			return s.ExternalReferenceID == externalReferenceID
		}, nil)
	if len(sessions) == 0 {
		return nil, ierr.NewError("checkout session not found").
			WithHintf("No checkout session with external reference %s", externalReferenceID).
			Mark(ierr.ErrNotFound)
	}
	copied := *sessions[0]
	return &copied, nil
}

func (m *InMemoryCheckoutStore) Update(ctx context.Context, session *checkout.Session) error {
	copied := *session
	if err := m.InMemoryStore.Update(ctx, session.ID, &copied); err != nil {
		return ierr.NewError("checkout session not found").
			WithHintf("Checkout session %s does not exist", session.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (m *InMemoryCheckoutStore) ListPending(ctx context.Context, filter *checkout.PendingFilter) ([]*checkout.Session, error) {
	return m.InMemoryStore.List(ctx, filter,
		func(ctx context.Context, s *checkout.Session, _ interface{}) bool {
			if s.PaymentStatus != types.PaymentStatusPending {
				return false
			}
			if filter != nil && !filter.CreatedAfter.IsZero() && !s.CreatedAt.After(filter.CreatedAfter) {
				return false
			}
			return true
		},
		func(i, j *checkout.Session) bool {
			return i.CreatedAt.After(j.CreatedAt)
		})
}
