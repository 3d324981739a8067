package dto

import (
	"time"

	"github.com/comanda/comanda/internal/domain/checkout"
	"github.com/comanda/comanda/internal/types"
	"github.com/comanda/comanda/internal/validator"
	"github.com/shopspring/decimal"
)

// CreateCheckoutRequest represents the request to open a payment session
type CreateCheckoutRequest struct {
	OrderID string `json:"order_id" binding:"required" validate:"required"`
}

func (r *CreateCheckoutRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// CheckoutResponse represents a checkout session in responses. The
// ciphertext-free shape is safe to hand to customer-facing clients; the
// init point URL is where the customer completes payment.
type CheckoutResponse struct {
	ID                  string              `json:"id"`
	OrderID             string              `json:"order_id"`
	ExternalReferenceID string              `json:"external_reference_id"`
	Amount              decimal.Decimal     `json:"amount"`
	Currency            string              `json:"currency"`
	PaymentStatus       types.PaymentStatus `json:"payment_status"`
	GatewayPaymentID    *string             `json:"gateway_payment_id,omitempty"`
	PreferenceID        *string             `json:"preference_id,omitempty"`
	InitPointURL        *string             `json:"init_point_url,omitempty"`
	PaidAt              *time.Time          `json:"paid_at,omitempty"`
	FailedAt            *time.Time          `json:"failed_at,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// ToCheckoutResponse converts a domain Session to a CheckoutResponse
func ToCheckoutResponse(s *checkout.Session) *CheckoutResponse {
	return &CheckoutResponse{
		ID:                  s.ID,
		OrderID:             s.OrderID,
		ExternalReferenceID: s.ExternalReferenceID,
		Amount:              s.Amount,
		Currency:            s.Currency,
		PaymentStatus:       s.PaymentStatus,
		GatewayPaymentID:    s.GatewayPaymentID,
		PreferenceID:        s.PreferenceID,
		InitPointURL:        s.InitPointURL,
		PaidAt:              s.PaidAt,
		FailedAt:            s.FailedAt,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}
