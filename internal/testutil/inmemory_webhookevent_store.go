package testutil

import (
	"context"
	"sync"

	"github.com/comanda/comanda/internal/domain/webhookevent"
	ierr "github.com/comanda/comanda/internal/errors"
)

// InMemoryWebhookEventStore implements webhookevent.Repository. Create
// mirrors the unique-constraint behavior of the real store: the second
// insert of the same event key fails with an already-exists error.
type InMemoryWebhookEventStore struct {
	mu    sync.RWMutex
	items map[string]*webhookevent.WebhookEvent
}

// NewInMemoryWebhookEventStore creates a new in-memory ledger repository
func NewInMemoryWebhookEventStore() *InMemoryWebhookEventStore {
	return &InMemoryWebhookEventStore{
		items: make(map[string]*webhookevent.WebhookEvent),
	}
}

// Clear resets all stored data
func (m *InMemoryWebhookEventStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]*webhookevent.WebhookEvent)
}

func (m *InMemoryWebhookEventStore) Create(ctx context.Context, event *webhookevent.WebhookEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[event.EventKey]; ok {
		return ierr.NewError("event already recorded").
			WithHint("Notification was already received").
			Mark(ierr.ErrAlreadyExists)
	}
	copied := *event
	m.items[event.EventKey] = &copied
	return nil
}

func (m *InMemoryWebhookEventStore) UpdatePayload(ctx context.Context, eventKey string, rawPayload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.items[eventKey]
	if !ok {
		return ierr.NewError("event not found").
			WithHint("No ledger row for event key").
			Mark(ierr.ErrNotFound)
	}
	event.RawPayload = rawPayload
	return nil
}

func (m *InMemoryWebhookEventStore) GetByKey(ctx context.Context, eventKey string) (*webhookevent.WebhookEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	event, ok := m.items[eventKey]
	if !ok {
		return nil, ierr.NewError("event not found").
			WithHint("No ledger row for event key").
			Mark(ierr.ErrNotFound)
	}
	copied := *event
	return &copied, nil
}

// Count returns the number of ledger rows
func (m *InMemoryWebhookEventStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
