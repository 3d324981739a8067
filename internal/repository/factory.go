package repository

import (
	"context"

	"github.com/comanda/comanda/internal/domain/checkout"
	"github.com/comanda/comanda/internal/domain/credential"
	"github.com/comanda/comanda/internal/domain/order"
	"github.com/comanda/comanda/internal/domain/webhookevent"
	"github.com/comanda/comanda/internal/logger"
	"github.com/comanda/comanda/internal/postgres"
)

// Repositories bundles the persistence interfaces for wiring
type Repositories struct {
	Credential   credential.Repository
	WebhookEvent webhookevent.Repository
	Checkout     checkout.Repository
	Order        order.Repository
}

// NewRepositories builds all gorm-backed repositories on the shared client
func NewRepositories(db postgres.IClient, log *logger.Logger) *Repositories {
	return &Repositories{
		Credential:   NewCredentialRepository(db, log),
		WebhookEvent: NewWebhookEventRepository(db, log),
		Checkout:     NewCheckoutRepository(db, log),
		Order:        NewOrderRepository(db, log),
	}
}

// Migrate creates/updates the schema for all tables
func Migrate(ctx context.Context, db postgres.IClient) error {
	return db.DB(ctx).AutoMigrate(
		&credentialRow{},
		&webhookEventRow{},
		&checkoutSessionRow{},
		&orderRow{},
	)
}
