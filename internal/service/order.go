package service

import (
	"context"

	"github.com/comanda/comanda/internal/domain/order"
	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/types"
)

// CreateOrderRequest is the service-level input for opening an order
type CreateOrderRequest struct {
	OrderType     types.OrderType
	TableNumber   *int
	CustomerName  string
	CustomerEmail string
	Items         []order.Item
	Currency      string
	Notes         string
}

// OrderService owns order CRUD; status changes are delegated to the
// transition service so the transition table stays the single authority.
type OrderService interface {
	Create(ctx context.Context, req *CreateOrderRequest) (*order.Order, error)
	Get(ctx context.Context, id string) (*order.Order, error)
	List(ctx context.Context) ([]*order.Order, error)
	Transition(ctx context.Context, id string, to types.OrderStatus) (*order.Order, error)
}

type orderService struct {
	ServiceParams
	transitions TransitionService
}

// NewOrderService creates the order service
func NewOrderService(params ServiceParams, transitions TransitionService) OrderService {
	return &orderService{ServiceParams: params, transitions: transitions}
}

func (s *orderService) Create(ctx context.Context, req *CreateOrderRequest) (*order.Order, error) {
	if err := types.ValidateTenantContext(ctx); err != nil {
		return nil, err
	}
	if req.Currency == "" {
		return nil, ierr.NewError("missing currency").
			WithHint("Currency is required").
			Mark(ierr.ErrValidation)
	}

	o := order.New(ctx, req.OrderType, req.CustomerName, req.Items, req.Currency)
	o.TableNumber = req.TableNumber
	o.CustomerEmail = req.CustomerEmail
	o.Notes = req.Notes

	if err := s.OrderRepo.Create(ctx, o); err != nil {
		return nil, err
	}

	s.Logger.Infow("order created",
		"order_id", o.ID,
		"order_number", o.OrderNumber,
		"tenant_id", o.TenantID,
		"total", o.Total,
	)
	return o, nil
}

func (s *orderService) Get(ctx context.Context, id string) (*order.Order, error) {
	o, err := s.OrderRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenantID := types.GetTenantID(ctx); tenantID != "" && o.TenantID != tenantID {
		return nil, ierr.NewError("order belongs to another tenant").
			WithHint("Order not found").
			Mark(ierr.ErrNotFound)
	}
	return o, nil
}

func (s *orderService) List(ctx context.Context) ([]*order.Order, error) {
	if err := types.ValidateTenantContext(ctx); err != nil {
		return nil, err
	}
	return s.OrderRepo.ListByTenant(ctx, types.GetTenantID(ctx))
}

func (s *orderService) Transition(ctx context.Context, id string, to types.OrderStatus) (*order.Order, error) {
	// Load first so cross-tenant probes surface as not-found before any
	// transition validation runs
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.transitions.TransitionOrder(ctx, id, to)
}
