package postgres

import (
	"context"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/comanda/comanda/internal/config"
	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/logger"
)

type txKey struct{}

// IClient is the narrow database capability the services depend on:
// transactional access plus handle resolution that is transaction-aware.
type IClient interface {
	// WithTx runs fn inside a transaction; the transactional handle is
	// carried in ctx and picked up by repositories via DB(ctx).
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// DB returns the handle for ctx: the enclosing transaction if one is
	// open, the root connection otherwise.
	DB(ctx context.Context) *gorm.DB

	Close() error
}

type client struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewClient opens the postgres connection and returns the shared client
func NewClient(cfg *config.Configuration, log_ *logger.Logger) (IClient, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN()), &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to connect to postgres").
			Mark(ierr.ErrDatabase)
	}

	return &client{db: db, logger: log_}, nil
}

func (c *client) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func (c *client) DB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return c.db.WithContext(ctx)
}

func (c *client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
