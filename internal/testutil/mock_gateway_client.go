package testutil

import (
	"context"
	"sync"

	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/gateway"
)

// GatewayCall records one payment-detail lookup: which payment was asked
// for and with which credential. Tests assert on these to verify the
// resolver's scan order and early exit.
type GatewayCall struct {
	PaymentID   string
	AccessToken string
}

// MockGatewayClient is an in-memory gateway.Client. Payment details are
// keyed by access token so a payment is only visible to the credential that
// owns it, matching the processor's account isolation.
type MockGatewayClient struct {
	mu sync.RWMutex

	// payments maps accessToken -> paymentID -> detail
	payments    map[string]map[string]*gateway.PaymentDetail
	preferences map[string]*gateway.Preference
	calls       []GatewayCall

	// PreferenceErr, when set, fails CreatePreference
	PreferenceErr error
}

// NewMockGatewayClient creates a new mock gateway client
func NewMockGatewayClient() *MockGatewayClient {
	return &MockGatewayClient{
		payments:    make(map[string]map[string]*gateway.PaymentDetail),
		preferences: make(map[string]*gateway.Preference),
	}
}

// RegisterPayment makes a payment detail visible to the given credential
func (m *MockGatewayClient) RegisterPayment(accessToken string, detail *gateway.PaymentDetail) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.payments[accessToken] == nil {
		m.payments[accessToken] = make(map[string]*gateway.PaymentDetail)
	}
	m.payments[accessToken][detail.ID] = detail
}

// Calls returns the recorded payment-detail lookups in order
func (m *MockGatewayClient) Calls() []GatewayCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]GatewayCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Clear resets payments, preferences and recorded calls
func (m *MockGatewayClient) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments = make(map[string]map[string]*gateway.PaymentDetail)
	m.preferences = make(map[string]*gateway.Preference)
	m.calls = nil
	m.PreferenceErr = nil
}

func (m *MockGatewayClient) GetPaymentDetail(ctx context.Context, paymentID string, accessToken string) (*gateway.PaymentDetail, error) {
	m.mu.Lock()
	m.calls = append(m.calls, GatewayCall{PaymentID: paymentID, AccessToken: accessToken})
	byToken := m.payments[accessToken]
	m.mu.Unlock()

	if detail, ok := byToken[paymentID]; ok {
		copied := *detail
		return &copied, nil
	}
	return nil, ierr.NewError("payment not found").
		WithHintf("Payment %s not found", paymentID).
		Mark(ierr.ErrNotFound)
}

func (m *MockGatewayClient) CreatePreference(ctx context.Context, req *gateway.PreferenceRequest, accessToken string) (*gateway.Preference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PreferenceErr != nil {
		return nil, m.PreferenceErr
	}

	pref := &gateway.Preference{
		ID:           "pref-" + req.ExternalReferenceID,
		InitPointURL: "https://checkout.test/init/" + req.ExternalReferenceID,
	}
	m.preferences[req.ExternalReferenceID] = pref
	copied := *pref
	return &copied, nil
}
