package dto

import (
	"time"

	"github.com/comanda/comanda/internal/domain/order"
	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/types"
	"github.com/comanda/comanda/internal/validator"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest represents the request to open a new order
type CreateOrderRequest struct {
	OrderType     types.OrderType    `json:"order_type" binding:"required" validate:"required"`
	TableNumber   *int               `json:"table_number,omitempty"`
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email,omitempty" validate:"omitempty,email"`
	Items         []OrderItemRequest `json:"items" binding:"required" validate:"required,min=1,dive"`
	Currency      string             `json:"currency" binding:"required" validate:"required,len=3"`
	Notes         string             `json:"notes,omitempty"`
}

// OrderItemRequest is one line of an order
type OrderItemRequest struct {
	Name      string          `json:"name" binding:"required" validate:"required"`
	Quantity  int             `json:"quantity" binding:"required" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

func (r *CreateOrderRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := r.OrderType.Validate(); err != nil {
		return err
	}
	if r.OrderType == types.OrderTypeDineIn && r.TableNumber == nil {
		return ierr.NewError("missing table number").
			WithHint("Dine-in orders require a table number").
			Mark(ierr.ErrValidation)
	}
	for _, item := range r.Items {
		if item.UnitPrice.IsNegative() {
			return ierr.NewError("invalid item price").
				WithHintf("Unit price for %s cannot be negative", item.Name).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

// DomainItems converts the request lines to domain items
func (r *CreateOrderRequest) DomainItems() []order.Item {
	return lo.Map(r.Items, func(item OrderItemRequest, _ int) order.Item {
		return order.Item{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	})
}

// UpdateOrderStatusRequest represents a staff-driven status change
type UpdateOrderStatusRequest struct {
	Status types.OrderStatus `json:"status" binding:"required" validate:"required"`
}

func (r *UpdateOrderStatusRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.Status.Validate()
}

// OrderResponse represents an order in responses
type OrderResponse struct {
	ID            string            `json:"id"`
	OrderNumber   string            `json:"order_number"`
	OrderType     types.OrderType   `json:"order_type"`
	OrderStatus   types.OrderStatus `json:"order_status"`
	TableNumber   *int              `json:"table_number,omitempty"`
	CustomerName  string            `json:"customer_name"`
	CustomerEmail string            `json:"customer_email,omitempty"`
	Items         []order.Item      `json:"items"`
	Total         decimal.Decimal   `json:"total"`
	Currency      string            `json:"currency"`
	Notes         string            `json:"notes,omitempty"`
	ConfirmedAt   *time.Time        `json:"confirmed_at,omitempty"`
	ReadyAt       *time.Time        `json:"ready_at,omitempty"`
	DeliveredAt   *time.Time        `json:"delivered_at,omitempty"`
	CancelledAt   *time.Time        `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// ListOrdersResponse represents the response for listing orders
type ListOrdersResponse struct {
	Items []*OrderResponse `json:"items"`
	Total int              `json:"total"`
}

// ToOrderResponse converts a domain Order to an OrderResponse
func ToOrderResponse(o *order.Order) *OrderResponse {
	return &OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		OrderType:     o.OrderType,
		OrderStatus:   o.OrderStatus,
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
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}
