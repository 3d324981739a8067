package v1

import (
	"net/http"

	"github.com/comanda/comanda/internal/api/dto"
	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/logger"
	"github.com/comanda/comanda/internal/service"
	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	service service.CheckoutService
	log     *logger.Logger
}

func NewCheckoutHandler(service service.CheckoutService, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{service: service, log: log}
}

// CreateCheckout opens a payment session for an order and returns the
// gateway init point URL the customer is redirected to
func (h *CheckoutHandler) CreateCheckout(c *gin.Context) {
	var req dto.CreateCheckoutRequest
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

	session, err := h.service.Create(c.Request.Context(), req.OrderID)
	if err != nil {
		h.log.Error("Failed to create checkout session", "error", err, "order_id", req.OrderID)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCheckoutResponse(session))
}

// GetCheckout returns a checkout session by ID
func (h *CheckoutHandler) GetCheckout(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Checkout session ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	session, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to get checkout session", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCheckoutResponse(session))
}
