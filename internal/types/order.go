package types

import (
	ierr "github.com/comanda/comanda/internal/errors"
)

// OrderStatus represents the kitchen-facing status of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusReady     OrderStatus = "READY"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the order can no longer change status
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func (s OrderStatus) Validate() error {
	allowed := []OrderStatus{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusPreparing,
		OrderStatusReady,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
	for _, status := range allowed {
		if s == status {
			return nil
		}
	}
	return ierr.NewError("invalid order status").
		WithHintf("Order status %s is not valid", s).
		WithReportableDetails(map[string]any{
			"allowed": allowed,
		}).
		Mark(ierr.ErrValidation)
}

// OrderType distinguishes how the order reaches the customer
type OrderType string

const (
	OrderTypeDineIn   OrderType = "DINE_IN"
	OrderTypeTakeaway OrderType = "TAKEAWAY"
	OrderTypeDelivery OrderType = "DELIVERY"
)

func (t OrderType) Validate() error {
	switch t {
	case OrderTypeDineIn, OrderTypeTakeaway, OrderTypeDelivery:
		return nil
	}
	return ierr.NewError("invalid order type").
		WithHintf("Order type %s is not valid", t).
		Mark(ierr.ErrValidation)
}
