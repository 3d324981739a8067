package testutil

import (
	"context"
	"time"

	"github.com/comanda/comanda/internal/config"
	"github.com/comanda/comanda/internal/domain/checkout"
	"github.com/comanda/comanda/internal/domain/credential"
	"github.com/comanda/comanda/internal/domain/order"
	"github.com/comanda/comanda/internal/domain/webhookevent"
	"github.com/comanda/comanda/internal/logger"
	"github.com/comanda/comanda/internal/postgres"
	"github.com/comanda/comanda/internal/security"
	"github.com/comanda/comanda/internal/sentry"
	"github.com/comanda/comanda/internal/types"
	"github.com/comanda/comanda/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	CredentialRepo   credential.Repository
	WebhookEventRepo webhookevent.Repository
	CheckoutRepo     checkout.Repository
	OrderRepo        order.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	stores    Stores
	publisher *InMemoryEventPublisher
	gateway   *MockGatewayClient
	db        postgres.IClient
	vault     security.Vault
	sentry    *sentry.Service
	logger    *logger.Logger
	config    *config.Configuration
	now       time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	s.config = config.GetDefaultConfig()
	s.logger = logger.NewNopLogger()

	var err error
	s.vault, err = security.NewVault(s.config, s.logger)
	if err != nil {
		s.T().Fatalf("failed to create vault: %v", err)
	}
	s.sentry = sentry.NewSentryService(s.config, s.logger)
	s.db = NewMockPostgresClient(s.logger)
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = context.Background()
	s.ctx = types.SetTenantID(s.ctx, types.DefaultTenantID)
	s.ctx = types.SetUserID(s.ctx, types.DefaultUserID)
	s.ctx = types.SetRequestID(s.ctx, types.GenerateUUID())
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		CredentialRepo:   NewInMemoryCredentialStore(),
		WebhookEventRepo: NewInMemoryWebhookEventStore(),
		CheckoutRepo:     NewInMemoryCheckoutStore(),
		OrderRepo:        NewInMemoryOrderStore(),
	}
	s.publisher = NewInMemoryEventPublisher()
	s.gateway = NewMockGatewayClient()
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.CredentialRepo.(*InMemoryCredentialStore).Clear()
	s.stores.WebhookEventRepo.(*InMemoryWebhookEventStore).Clear()
	s.stores.CheckoutRepo.(*InMemoryCheckoutStore).Clear()
	s.stores.OrderRepo.(*InMemoryOrderStore).Clear()
	s.publisher.Clear()
	s.gateway.Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetStores returns the in-memory repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetPublisher returns the capturing event publisher
func (s *BaseServiceTestSuite) GetPublisher() *InMemoryEventPublisher {
	return s.publisher
}

// GetGateway returns the mock gateway client
func (s *BaseServiceTestSuite) GetGateway() *MockGatewayClient {
	return s.gateway
}

// GetDB returns the mock database client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetVault returns the test credential vault
func (s *BaseServiceTestSuite) GetVault() security.Vault {
	return s.vault
}

// GetSentry returns the test sentry service (disabled)
func (s *BaseServiceTestSuite) GetSentry() *sentry.Service {
	return s.sentry
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
