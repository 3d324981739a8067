package types

import (
	ierr "github.com/comanda/comanda/internal/errors"
)

// PaymentStatus represents the status of a checkout session's payment
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

func (s PaymentStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further payment transitions are allowed
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusFailed
}

func (s PaymentStatus) Validate() error {
	allowed := []PaymentStatus{
		PaymentStatusPending,
		PaymentStatusPaid,
		PaymentStatusFailed,
	}
	for _, status := range allowed {
		if s == status {
			return nil
		}
	}
	return ierr.NewError("invalid payment status").
		WithHintf("Payment status %s is not valid", s).
		WithReportableDetails(map[string]any{
			"allowed": allowed,
		}).
		Mark(ierr.ErrValidation)
}

// GatewayPaymentStatus is the status string reported by the payment
// processor for a payment. Only approved payments trigger a local PAID
// transition.
type GatewayPaymentStatus string

const (
	GatewayPaymentStatusApproved  GatewayPaymentStatus = "approved"
	GatewayPaymentStatusPending   GatewayPaymentStatus = "pending"
	GatewayPaymentStatusInProcess GatewayPaymentStatus = "in_process"
	GatewayPaymentStatusRejected  GatewayPaymentStatus = "rejected"
	GatewayPaymentStatusCancelled GatewayPaymentStatus = "cancelled"
	GatewayPaymentStatusRefunded  GatewayPaymentStatus = "refunded"
)

// IsApproved reports whether the gateway considers the payment settled
func (s GatewayPaymentStatus) IsApproved() bool {
	return s == GatewayPaymentStatusApproved
}

// IsFailure reports whether the gateway considers the payment failed for good
func (s GatewayPaymentStatus) IsFailure() bool {
	return s == GatewayPaymentStatusRejected || s == GatewayPaymentStatusCancelled
}
