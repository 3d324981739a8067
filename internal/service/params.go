package service

import (
	"github.com/comanda/comanda/internal/config"
	"github.com/comanda/comanda/internal/domain/checkout"
	"github.com/comanda/comanda/internal/domain/credential"
	"github.com/comanda/comanda/internal/domain/order"
	"github.com/comanda/comanda/internal/domain/webhookevent"
	"github.com/comanda/comanda/internal/gateway"
	"github.com/comanda/comanda/internal/logger"
	"github.com/comanda/comanda/internal/postgres"
	"github.com/comanda/comanda/internal/security"
	"github.com/comanda/comanda/internal/sentry"
	"github.com/comanda/comanda/internal/webhook/publisher"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger  *logger.Logger
	Config  *config.Configuration
	DB      postgres.IClient
	Vault   security.Vault
	Gateway gateway.Client
	Sentry  *sentry.Service

	EventPublisher publisher.EventPublisher

	// Repositories
	CredentialRepo   credential.Repository
	WebhookEventRepo webhookevent.Repository
	CheckoutRepo     checkout.Repository
	OrderRepo        order.Repository
}
