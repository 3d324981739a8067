package testutil

import (
	"context"
	"sync"

	"github.com/comanda/comanda/internal/domain/credential"
	ierr "github.com/comanda/comanda/internal/errors"
)

// InMemoryCredentialStore implements credential.Repository keyed by tenant
type InMemoryCredentialStore struct {
	mu    sync.RWMutex
	items map[string]*credential.Credential
}

// NewInMemoryCredentialStore creates a new in-memory credential repository
func NewInMemoryCredentialStore() *InMemoryCredentialStore {
	return &InMemoryCredentialStore{
		items: make(map[string]*credential.Credential),
	}
}

// Clear resets all stored data
func (m *InMemoryCredentialStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]*credential.Credential)
}

func (m *InMemoryCredentialStore) Upsert(ctx context.Context, cred *credential.Credential) error {
	if err := cred.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *cred
	m.items[cred.TenantID] = &copied
	return nil
}

func (m *InMemoryCredentialStore) GetByTenant(ctx context.Context, tenantID string) (*credential.Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cred, ok := m.items[tenantID]
	if !ok {
		return nil, ierr.NewError("credential not found").
			WithHintf("No credential connected for tenant %s", tenantID).
			Mark(ierr.ErrNotFound)
	}
	copied := *cred
	return &copied, nil
}

func (m *InMemoryCredentialStore) DeleteByTenant(ctx context.Context, tenantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[tenantID]; !ok {
		return ierr.NewError("credential not found").
			WithHintf("No credential connected for tenant %s", tenantID).
			Mark(ierr.ErrNotFound)
	}
	delete(m.items, tenantID)
	return nil
}
