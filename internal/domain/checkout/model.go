package checkout

import (
	"context"
	"time"

	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/types"
	"github.com/shopspring/decimal"
)

// Session is a pending payment for an order. Its id doubles as the external
// reference sent to the payment gateway and echoed back in notifications,
// the globally unique join key between a gateway payment and a local record.
// PaymentStatus transitions exactly once from PENDING to a terminal state;
// re-deliveries after that must be no-ops.
type Session struct {
	ID      string `db:"id" json:"id"`
	OrderID string `db:"order_id" json:"order_id"`
	// ExternalReferenceID equals ID; stored explicitly so the join key
	// survives any future id scheme change
	ExternalReferenceID string              `db:"external_reference_id" json:"external_reference_id"`
	Amount              decimal.Decimal     `db:"amount" json:"amount"`
	Currency            string              `db:"currency" json:"currency"`
	PaymentStatus       types.PaymentStatus `db:"payment_status" json:"payment_status"`
	// GatewayPaymentID is the processor-assigned id, recorded on reconcile
	GatewayPaymentID *string `db:"gateway_payment_id" json:"gateway_payment_id,omitempty"`
	// PreferenceID and InitPointURL come back from CreatePreference
	PreferenceID *string    `db:"preference_id" json:"preference_id,omitempty"`
	InitPointURL *string    `db:"init_point_url" json:"init_point_url,omitempty"`
	PaidAt       *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	FailedAt     *time.Time `db:"failed_at" json:"failed_at,omitempty"`
	ErrorMessage *string    `db:"error_message" json:"error_message,omitempty"`

	types.BaseModel
}

func (s *Session) Validate() error {
	if s.OrderID == "" {
		return ierr.NewError("missing order id").
			WithHint("Checkout session must reference an order").
			Mark(ierr.ErrValidation)
	}
	if s.Amount.IsZero() || s.Amount.IsNegative() {
		return ierr.NewError("invalid amount").
			WithHint("Amount must be greater than 0").
			Mark(ierr.ErrValidation)
	}
	if s.Currency == "" {
		return ierr.NewError("missing currency").
			WithHint("Currency is required").
			Mark(ierr.ErrValidation)
	}
	return s.PaymentStatus.Validate()
}

// New builds a pending session for an order
func New(ctx context.Context, orderID string, amount decimal.Decimal, currency string) *Session {
	id := types.GenerateUUIDWithPrefix(types.UUIDPrefixCheckoutSession)
	return &Session{
		ID:                  id,
		OrderID:             orderID,
		ExternalReferenceID: id,
		Amount:              amount,
		Currency:            currency,
		PaymentStatus:       types.PaymentStatusPending,
		BaseModel:           types.GetDefaultBaseModel(ctx),
	}
}
