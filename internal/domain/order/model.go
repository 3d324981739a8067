package order

import (
	"context"
	"time"

	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/types"
	"github.com/shopspring/decimal"
)

// Order is a restaurant order. Its status is mutated only through the
// transition service, never directly by handlers.
type Order struct {
	ID            string            `db:"id" json:"id"`
	OrderNumber   string            `db:"order_number" json:"order_number"`
	OrderType     types.OrderType   `db:"order_type" json:"order_type"`
	OrderStatus   types.OrderStatus `db:"order_status" json:"order_status"`
	TableNumber   *int              `db:"table_number" json:"table_number,omitempty"`
	CustomerName  string            `db:"customer_name" json:"customer_name"`
	CustomerEmail string            `db:"customer_email" json:"customer_email,omitempty"`
	Items         []Item            `db:"items" json:"items"`
	Total         decimal.Decimal   `db:"total" json:"total"`
	Currency      string            `db:"currency" json:"currency"`
	Notes         string            `db:"notes" json:"notes,omitempty"`

	ConfirmedAt *time.Time `db:"confirmed_at" json:"confirmed_at,omitempty"`
	ReadyAt     *time.Time `db:"ready_at" json:"ready_at,omitempty"`
	DeliveredAt *time.Time `db:"delivered_at" json:"delivered_at,omitempty"`
	CancelledAt *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`

	types.BaseModel
}

// Item is one line of an order
type Item struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (o *Order) Validate() error {
	if err := o.OrderType.Validate(); err != nil {
		return err
	}
	if len(o.Items) == 0 {
		return ierr.NewError("order has no items").
			WithHint("At least one item is required").
			Mark(ierr.ErrValidation)
	}
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			return ierr.NewError("invalid item quantity").
				WithHintf("Quantity for %s must be positive", item.Name).
				Mark(ierr.ErrValidation)
		}
		if item.UnitPrice.IsNegative() {
			return ierr.NewError("invalid item price").
				WithHintf("Unit price for %s cannot be negative", item.Name).
				Mark(ierr.ErrValidation)
		}
	}
	if o.Total.IsNegative() {
		return ierr.NewError("invalid total").
			WithHint("Order total cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return o.OrderStatus.Validate()
}

// ComputeTotal sums the line items
func ComputeTotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// New builds a pending order
func New(ctx context.Context, orderType types.OrderType, customerName string, items []Item, currency string) *Order {
	return &Order{
		ID:           types.GenerateUUIDWithPrefix(types.UUIDPrefixOrder),
		OrderNumber:  types.GenerateOrderNumber(),
		OrderType:    orderType,
		OrderStatus:  types.OrderStatusPending,
		CustomerName: customerName,
		Items:        items,
		Total:        ComputeTotal(items),
		Currency:     currency,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
}
