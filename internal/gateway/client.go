package gateway

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/comanda/comanda/internal/types"
)

// PaymentDetail is the processor's view of a payment, fetched with a
// specific credential. ExternalReferenceID is the merchant-side reference we
// handed over at preference creation and is the join key back to a local
// checkout session.
type PaymentDetail struct {
	ID                  string                     `json:"id"`
	Status              types.GatewayPaymentStatus `json:"status"`
	ExternalReferenceID string                     `json:"external_reference"`
	TransactionAmount   decimal.Decimal            `json:"transaction_amount"`
	Metadata            map[string]interface{}     `json:"metadata,omitempty"`
}

// PreferenceItem is one purchasable line in a payment preference
type PreferenceItem struct {
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Currency  string          `json:"currency_id"`
}

// BackURLs are the redirect targets after the hosted checkout finishes
type BackURLs struct {
	Success string `json:"success"`
	Pending string `json:"pending"`
	Failure string `json:"failure"`
}

// PreferenceRequest asks the processor to open a hosted checkout
type PreferenceRequest struct {
	Items               []PreferenceItem `json:"items"`
	ExternalReferenceID string           `json:"external_reference"`
	NotificationURL     string           `json:"notification_url"`
	BackURLs            BackURLs         `json:"back_urls"`
}

// Preference is the processor's handle for a hosted checkout
type Preference struct {
	ID           string `json:"id"`
	InitPointURL string `json:"init_point"`
}

// Client is the thin RPC wrapper around the payment processor's HTTP API.
// Authentication is a bearer credential resolved per call; there is no
// client-wide token, since each tenant connects the processor with its own.
type Client interface {
	// GetPaymentDetail fetches a payment by processor-assigned id. Returns
	// a not-found error when this credential does not recognize the id.
	GetPaymentDetail(ctx context.Context, paymentID string, accessToken string) (*PaymentDetail, error)

	// CreatePreference opens a hosted checkout for the given items
	CreatePreference(ctx context.Context, req *PreferenceRequest, accessToken string) (*Preference, error)
}
