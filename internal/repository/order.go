package repository

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/comanda/comanda/internal/domain/order"
	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/logger"
	"github.com/comanda/comanda/internal/postgres"
	"github.com/comanda/comanda/internal/types"
)

type orderRow struct {
	ID            string `gorm:"primaryKey"`
	OrderNumber   string `gorm:"index"`
	OrderType     string
	OrderStatus   string `gorm:"index"`
	TableNumber   *int
	CustomerName  string
	CustomerEmail string
	Items         []order.Item    `gorm:"serializer:json"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2)"`
	Currency      string
	Notes         string
	ConfirmedAt   *time.Time
	ReadyAt       *time.Time
	DeliveredAt   *time.Time
	CancelledAt   *time.Time
	TenantID      string `gorm:"index;not null"`
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CreatedBy     string
	UpdatedBy     string
}

func (orderRow) TableName() string {
	return "orders"
}

func toOrderRow(o *order.Order) *orderRow {
	return &orderRow{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		OrderType:     string(o.OrderType),
		OrderStatus:   o.OrderStatus.String(),
		TableNumber:   o.TableNumber,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		Items:         o.Items,
		Total:         o.Total,
		Currency:      o.Currency,
		Notes:         o.Notes,
		ConfirmedAt:   o.ConfirmedAt,
		ReadyAt:       o.ReadyAt,
		DeliveredAt:   o.DeliveredAt,
		CancelledAt:   o.CancelledAt,
		TenantID:      o.TenantID,
		Status:        o.Status.String(),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		CreatedBy:     o.CreatedBy,
		UpdatedBy:     o.UpdatedBy,
	}
}

func (r *orderRow) toDomain() *order.Order {
	return &order.Order{
		ID:            r.ID,
		OrderNumber:   r.OrderNumber,
		OrderType:     types.OrderType(r.OrderType),
		OrderStatus:   types.OrderStatus(r.OrderStatus),
		TableNumber:   r.TableNumber,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		Items:         r.Items,
		Total:         r.Total,
		Currency:      r.Currency,
		Notes:         r.Notes,
		ConfirmedAt:   r.ConfirmedAt,
		ReadyAt:       r.ReadyAt,
		DeliveredAt:   r.DeliveredAt,
		CancelledAt:   r.CancelledAt,
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

type orderRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

// NewOrderRepository creates a gorm-backed order repository
func NewOrderRepository(db postgres.IClient, log *logger.Logger) order.Repository {
	return &orderRepository{db: db, logger: log}
}

func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}

	if err := r.db.DB(ctx).Create(toOrderRow(o)).Error; err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create order").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *orderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	var row orderRow
	err := r.db.DB(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("order not found").
				WithHintf("No order with id %s", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load order").
			Mark(ierr.ErrDatabase)
	}
	return row.toDomain(), nil
}

func (r *orderRepository) Update(ctx context.Context, o *order.Order) error {
	result := r.db.DB(ctx).Save(toOrderRow(o))
	if result.Error != nil {
		return ierr.WithError(result.Error).
			WithHint("Failed to update order").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *orderRepository) ListByTenant(ctx context.Context, tenantID string) ([]*order.Order, error) {
	var rows []orderRow
	err := r.db.DB(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list orders").
			Mark(ierr.ErrDatabase)
	}

	out := make([]*order.Order, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}
