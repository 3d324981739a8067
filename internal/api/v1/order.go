package v1

import (
	"net/http"

	"github.com/comanda/comanda/internal/api/dto"
	"github.com/comanda/comanda/internal/domain/order"
	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/logger"
	"github.com/comanda/comanda/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type OrderHandler struct {
	service service.OrderService
	log     *logger.Logger
}

func NewOrderHandler(service service.OrderService, log *logger.Logger) *OrderHandler {
	return &OrderHandler{service: service, log: log}
}

// CreateOrder opens a new order for the tenant in context
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	o, err := h.service.Create(c.Request.Context(), &service.CreateOrderRequest{
		OrderType:     req.OrderType,
		TableNumber:   req.TableNumber,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Items:         req.DomainItems(),
		Currency:      req.Currency,
		Notes:         req.Notes,
	})
	if err != nil {
		h.log.Error("Failed to create order", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToOrderResponse(o))
}

// GetOrder returns a single order by ID
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Order ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	o, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to get order", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrderResponse(o))
}

// ListOrders returns the tenant's orders, newest first
func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.service.List(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list orders", "error", err)
		c.Error(err)
		return
	}

	items := lo.Map(orders, func(o *order.Order, _ int) *dto.OrderResponse {
		return dto.ToOrderResponse(o)
	})
	c.JSON(http.StatusOK, dto.ListOrdersResponse{Items: items, Total: len(items)})
}

// UpdateOrderStatus moves an order through the kitchen workflow
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Order ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	o, err := h.service.Transition(c.Request.Context(), id, req.Status)
	if err != nil {
		h.log.Error("Failed to update order status", "error", err, "order_id", id, "status", req.Status)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrderResponse(o))
}
