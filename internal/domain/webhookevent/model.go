package webhookevent

import (
	"time"

	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/types"
)

// WebhookEvent is one row of the inbound notification ledger. EventKey
// uniqueness is enforced by the storage layer; the insert itself is the
// dedup mechanism. Rows are never deleted; the ledger doubles as an audit
// trail of everything the processor ever sent us.
type WebhookEvent struct {
	ID         string    `db:"id" json:"id"`
	EventKey   string    `db:"event_key" json:"event_key"`
	RawPayload []byte    `db:"raw_payload" json:"raw_payload"`
	ReceivedAt time.Time `db:"received_at" json:"received_at"`
}

func (e *WebhookEvent) Validate() error {
	if e.EventKey == "" {
		return ierr.NewError("missing event key").
			WithHint("Ledger rows require a deterministic event key").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// New builds a ledger row for an inbound notification
func New(eventKey string, rawPayload []byte, now time.Time) *WebhookEvent {
	return &WebhookEvent{
		ID:         types.GenerateUUIDWithPrefix(types.UUIDPrefixWebhookEvent),
		EventKey:   eventKey,
		RawPayload: rawPayload,
		ReceivedAt: now,
	}
}
