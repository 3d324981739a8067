package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/comanda/comanda/internal/domain/webhookevent"
	ierr "github.com/comanda/comanda/internal/errors"
)

// ledgerProvider namespaces event keys per notification source
const ledgerProvider = "mercadopago"

// EventLedgerService deduplicates inbound notifications so each is processed
// at most once. The storage layer's unique constraint is the arbiter: two
// concurrent deliveries of the same notification race their inserts, the
// storage engine picks a winner, and the loser observes "not new".
type EventLedgerService interface {
	// DeriveKey computes the deterministic ledger key for a notification:
	// provider:type:id when both identifiers are present, otherwise a
	// content hash of the raw payload.
	DeriveKey(notificationType, notificationID string, rawPayload []byte) string

	// RecordIfNew inserts the notification into the ledger. Returns false
	// when the key was already recorded; in that case the stored payload is
	// overwritten best-effort for observability.
	RecordIfNew(ctx context.Context, eventKey string, rawPayload []byte) (bool, error)
}

type eventLedgerService struct {
	ServiceParams
}

// NewEventLedgerService creates the notification ledger service
func NewEventLedgerService(params ServiceParams) EventLedgerService {
	return &eventLedgerService{ServiceParams: params}
}

func (s *eventLedgerService) DeriveKey(notificationType, notificationID string, rawPayload []byte) string {
	if notificationType != "" && notificationID != "" {
		return fmt.Sprintf("%s:%s:%s", ledgerProvider, notificationType, notificationID)
	}
	sum := sha256.Sum256(rawPayload)
	return fmt.Sprintf("%s:%s", ledgerProvider, hex.EncodeToString(sum[:]))
}

func (s *eventLedgerService) RecordIfNew(ctx context.Context, eventKey string, rawPayload []byte) (bool, error) {
	event := webhookevent.New(eventKey, rawPayload, time.Now().UTC())

	err := s.WebhookEventRepo.Create(ctx, event)
	if err == nil {
		return true, nil
	}

	if ierr.IsAlreadyExists(err) {
		// Duplicate delivery. Keep the freshest payload around for
		// debugging but never re-process.
		if updateErr := s.WebhookEventRepo.UpdatePayload(ctx, eventKey, rawPayload); updateErr != nil {
			s.Logger.Warnw("failed to refresh duplicate notification payload",
				"error", updateErr,
				"event_key", eventKey,
			)
		}
		return false, nil
	}

	return false, err
}
