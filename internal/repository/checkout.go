package repository

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/comanda/comanda/internal/domain/checkout"
	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/logger"
	"github.com/comanda/comanda/internal/postgres"
	"github.com/comanda/comanda/internal/types"
)

type checkoutSessionRow struct {
	ID                  string `gorm:"primaryKey"`
	OrderID             string `gorm:"index;not null"`
	ExternalReferenceID string `gorm:"uniqueIndex;not null"`
	Amount              decimal.Decimal `gorm:"type:numeric(12,2)"`
	Currency            string
	PaymentStatus       string `gorm:"index"`
	GatewayPaymentID    *string
	PreferenceID        *string
	InitPointURL        *string
	PaidAt              *time.Time
	FailedAt            *time.Time
	ErrorMessage        *string
	TenantID            string `gorm:"index;not null"`
	Status              string
	CreatedAt           time.Time `gorm:"index"`
	UpdatedAt           time.Time
	CreatedBy           string
	UpdatedBy           string
}

func (checkoutSessionRow) TableName() string {
	return "checkout_sessions"
}

func toCheckoutSessionRow(s *checkout.Session) *checkoutSessionRow {
	return &checkoutSessionRow{
		ID:                  s.ID,
		OrderID:             s.OrderID,
		ExternalReferenceID: s.ExternalReferenceID,
		Amount:              s.Amount,
		Currency:            s.Currency,
		PaymentStatus:       s.PaymentStatus.String(),
		GatewayPaymentID:    s.GatewayPaymentID,
		PreferenceID:        s.PreferenceID,
		InitPointURL:        s.InitPointURL,
		PaidAt:              s.PaidAt,
		FailedAt:            s.FailedAt,
		ErrorMessage:        s.ErrorMessage,
		TenantID:            s.TenantID,
		Status:              s.Status.String(),
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
		CreatedBy:           s.CreatedBy,
		UpdatedBy:           s.UpdatedBy,
	}
}

func (r *checkoutSessionRow) toDomain() *checkout.Session {
	return &checkout.Session{
		ID:                  r.ID,
		OrderID:             r.OrderID,
		ExternalReferenceID: r.ExternalReferenceID,
		Amount:              r.Amount,
		Currency:            r.Currency,
		PaymentStatus:       types.PaymentStatus(r.PaymentStatus),
		GatewayPaymentID:    r.GatewayPaymentID,
		PreferenceID:        r.PreferenceID,
		InitPointURL:        r.InitPointURL,
		PaidAt:              r.PaidAt,
		FailedAt:            r.FailedAt,
		ErrorMessage:        r.ErrorMessage,
		BaseModel: types.BaseModel{
			TenantID:  r.TenantID,
			Status:    types.Status(r.Status),
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
			CreatedBy: r.CreatedBy,
			UpdatedBy: r.UpdatedBy,
		},
	}
}

type checkoutRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

// NewCheckoutRepository creates a gorm-backed checkout session repository
func NewCheckoutRepository(db postgres.IClient, log *logger.Logger) checkout.Repository {
	return &checkoutRepository{db: db, logger: log}
}

func (r *checkoutRepository) Create(ctx context.Context, session *checkout.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}

	err := r.db.DB(ctx).Create(toCheckoutSessionRow(session)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ierr.WithError(err).
				WithHint("Checkout session already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create checkout session").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *checkoutRepository) Get(ctx context.Context, id string) (*checkout.Session, error) {
	var row checkoutSessionRow
	err := r.db.DB(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		return nil, r.notFoundOrDatabase(err, id)
	}
	return row.toDomain(), nil
}

func (r *checkoutRepository) GetByExternalReference(ctx context.Context, externalReferenceID string) (*checkout.Session, error) {
	var row checkoutSessionRow
	err := r.db.DB(ctx).Where("external_reference_id = ?", externalReferenceID).First(&row).Error
	if err != nil {
		return nil, r.notFoundOrDatabase(err, externalReferenceID)
	}
	return row.toDomain(), nil
}

func (r *checkoutRepository) Update(ctx context.Context, session *checkout.Session) error {
	result := r.db.DB(ctx).Save(toCheckoutSessionRow(session))
	if result.Error != nil {
		return ierr.WithError(result.Error).
			WithHint("Failed to update checkout session").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *checkoutRepository) ListPending(ctx context.Context, filter *checkout.PendingFilter) ([]*checkout.Session, error) {
	query := r.db.DB(ctx).
		Where("payment_status = ?", types.PaymentStatusPending.String()).
		Order("created_at DESC")
	if filter != nil && !filter.CreatedAfter.IsZero() {
		query = query.Where("created_at > ?", filter.CreatedAfter)
	}

	var rows []checkoutSessionRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list pending checkout sessions").
			Mark(ierr.ErrDatabase)
	}

	sessions := make([]*checkout.Session, 0, len(rows))
	for i := range rows {
		sessions = append(sessions, rows[i].toDomain())
	}
	return sessions, nil
}

func (r *checkoutRepository) notFoundOrDatabase(err error, ref string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ierr.NewError("checkout session not found").
			WithHintf("No checkout session for %s", ref).
			Mark(ierr.ErrNotFound)
	}
	return ierr.WithError(err).
		WithHint("Failed to load checkout session").
		Mark(ierr.ErrDatabase)
}
