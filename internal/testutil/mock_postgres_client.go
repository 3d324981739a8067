package testutil

import (
	"context"

	"github.com/comanda/comanda/internal/logger"
	"github.com/comanda/comanda/internal/postgres"
	"gorm.io/gorm"
)

var _ postgres.IClient = (*MockPostgresClient)(nil)

// MockPostgresClient satisfies postgres.IClient for service tests backed by
// in-memory repositories. WithTx runs the function directly; atomicity is
// not simulated, the repositories themselves are consistent per call.
type MockPostgresClient struct {
	logger *logger.Logger
}

// NewMockPostgresClient creates a new mock postgres client
func NewMockPostgresClient(logger *logger.Logger) postgres.IClient {
	return &MockPostgresClient{logger: logger}
}

func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// DB returns nil; in-memory repositories never touch a gorm handle
func (c *MockPostgresClient) DB(ctx context.Context) *gorm.DB {
	return nil
}

func (c *MockPostgresClient) Close() error {
	return nil
}
