package repository

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"gorm.io/gorm"

	"github.com/comanda/comanda/internal/domain/webhookevent"
	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/logger"
	"github.com/comanda/comanda/internal/postgres"
)

type webhookEventRow struct {
	ID         string `gorm:"primaryKey"`
	EventKey   string `gorm:"uniqueIndex;not null"`
	RawPayload []byte
	ReceivedAt time.Time
}

func (webhookEventRow) TableName() string {
	return "webhook_events"
}

func (r *webhookEventRow) toDomain() *webhookevent.WebhookEvent {
	return &webhookevent.WebhookEvent{
		ID:         r.ID,
		EventKey:   r.EventKey,
		RawPayload: r.RawPayload,
		ReceivedAt: r.ReceivedAt,
	}
}

type webhookEventRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

// NewWebhookEventRepository creates a gorm-backed ledger repository
func NewWebhookEventRepository(db postgres.IClient, log *logger.Logger) webhookevent.Repository {
	return &webhookEventRepository{db: db, logger: log}
}

// Create inserts a ledger row. The unique constraint on event_key is the
// dedup mechanism: a duplicate surfaces as ErrAlreadyExists and the caller
// branches on that, with no prior read.
func (r *webhookEventRepository) Create(ctx context.Context, event *webhookevent.WebhookEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	row := &webhookEventRow{
		ID:         event.ID,
		EventKey:   event.EventKey,
		RawPayload: event.RawPayload,
		ReceivedAt: event.ReceivedAt,
	}
	err := r.db.DB(ctx).Create(row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ierr.WithError(err).
				WithHint("Notification already recorded").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to record notification").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *webhookEventRepository) UpdatePayload(ctx context.Context, eventKey string, rawPayload []byte) error {
	err := r.db.DB(ctx).Model(&webhookEventRow{}).
		Where("event_key = ?", eventKey).
		Update("raw_payload", rawPayload).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update notification payload").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *webhookEventRepository) GetByKey(ctx context.Context, eventKey string) (*webhookevent.WebhookEvent, error) {
	var row webhookEventRow
	err := r.db.DB(ctx).Where("event_key = ?", eventKey).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("notification not found").
				WithHintf("No ledger row for key %s", eventKey).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load notification").
			Mark(ierr.ErrDatabase)
	}
	return row.toDomain(), nil
}
