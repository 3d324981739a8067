package service

import (
	"github.com/comanda/comanda/internal/testutil"
)

// newTestParams assembles ServiceParams from the base suite's in-memory
// dependencies
func newTestParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		DB:               s.GetDB(),
		Vault:            s.GetVault(),
		Gateway:          s.GetGateway(),
		Sentry:           s.GetSentry(),
		EventPublisher:   s.GetPublisher(),
		CredentialRepo:   stores.CredentialRepo,
		WebhookEventRepo: stores.WebhookEventRepo,
		CheckoutRepo:     stores.CheckoutRepo,
		OrderRepo:        stores.OrderRepo,
	}
}
