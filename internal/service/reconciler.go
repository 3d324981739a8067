package service

import (
	"context"

	"github.com/comanda/comanda/internal/webhook"

	ierr "github.com/comanda/comanda/internal/errors"
)

// notificationTypePayment is the only inbound notification type that drives
// a state transition; everything else is recorded and ignored.
const notificationTypePayment = "payment"

// WebhookInput is everything the transport layer extracts from an inbound
// processor notification.
type WebhookInput struct {
	RawBody          []byte
	SignatureHeader  string
	RequestID        string
	NotificationType string
	NotificationID   string
}

// ReconciliationResult is always acknowledged with HTTP 200 by the
// transport layer; processors retry aggressively on non-2xx and a rejection
// reason belongs in the body and the logs, not the status code.
type ReconciliationResult struct {
	Received          bool   `json:"received"`
	Processed         bool   `json:"processed"`
	Duplicate         bool   `json:"duplicate,omitempty"`
	Status            string `json:"status,omitempty"`
	CheckoutSessionID string `json:"checkout_session_id,omitempty"`
	Error             string `json:"error,omitempty"`
}

// WebhookReconcilerService turns an inbound payment notification into a
// one-time, correctly attributed state transition:
// verify -> dedupe -> resolve -> transition. Correctness under concurrent
// and replayed deliveries rests on the ledger's unique constraint and the
// terminal-state check, not on in-process locks, so the process can be
// horizontally scaled with no shared memory.
type WebhookReconcilerService interface {
	Handle(ctx context.Context, input *WebhookInput) *ReconciliationResult
}

type webhookReconciler struct {
	ServiceParams
	verifier    *webhook.SignatureVerifier
	ledger      EventLedgerService
	resolver    CredentialResolverService
	transitions TransitionService
}

// NewWebhookReconcilerService wires the reconciliation pipeline
func NewWebhookReconcilerService(
	params ServiceParams,
	verifier *webhook.SignatureVerifier,
	ledger EventLedgerService,
	resolver CredentialResolverService,
	transitions TransitionService,
) WebhookReconcilerService {
	return &webhookReconciler{
		ServiceParams: params,
		verifier:      verifier,
		ledger:        ledger,
		resolver:      resolver,
		transitions:   transitions,
	}
}

func (s *webhookReconciler) Handle(ctx context.Context, input *WebhookInput) *ReconciliationResult {
	log := s.Logger.With(
		"request_id", input.RequestID,
		"notification_type", input.NotificationType,
		"notification_id", input.NotificationID,
	)

	// 1. Authenticity. Invalid signatures are acknowledged, logged and
	// dropped; they are routine (retries, clock skew) and never alerted.
	verification := s.verifier.Verify(input.SignatureHeader, input.RequestID, input.NotificationID)
	if !verification.Valid {
		log.Warnw("webhook signature rejected", "reason", verification.Reason)
		return &ReconciliationResult{Received: true, Processed: false, Error: verification.Reason}
	}

	// 2. Dedupe. The insert itself is the race arbiter; a concurrent
	// duplicate observes "not new" and exits cleanly. The ledger row is
	// written before any cancellable work so a mid-flight failure still
	// dedupes the processor's retry.
	eventKey := s.ledger.DeriveKey(input.NotificationType, input.NotificationID, input.RawBody)
	isNew, err := s.ledger.RecordIfNew(ctx, eventKey, input.RawBody)
	if err != nil {
		log.Errorw("failed to record notification", "error", err, "event_key", eventKey)
		return &ReconciliationResult{Received: true, Processed: false, Error: "ledger_unavailable"}
	}
	if !isNew {
		log.Infow("duplicate notification ignored", "event_key", eventKey)
		return &ReconciliationResult{Received: true, Processed: false, Duplicate: true}
	}

	// 3. Only payment notifications drive transitions
	if input.NotificationType != notificationTypePayment {
		log.Infow("ignoring non-payment notification")
		return &ReconciliationResult{Received: true, Processed: false}
	}

	// 4. Attribution
	resolved, err := s.resolver.FindTenantForPayment(ctx, input.NotificationID)
	if err != nil {
		if ierr.IsNotFound(err) {
			log.Warnw("payment did not match any tenant", "payment_id", input.NotificationID)
			return &ReconciliationResult{Received: true, Processed: false, Error: "no_match"}
		}
		log.Errorw("tenant resolution failed", "error", err)
		return &ReconciliationResult{Received: true, Processed: false, Error: "resolution_failed"}
	}

	log = log.With("tenant_id", resolved.TenantID, "checkout_session_id", resolved.Session.ID)

	// 5. Only settled payments transition state
	if !resolved.Detail.Status.IsApproved() {
		log.Infow("payment not approved yet, leaving session pending",
			"gateway_status", resolved.Detail.Status,
		)
		return &ReconciliationResult{
			Received:          true,
			Processed:         false,
			Status:            string(resolved.Detail.Status),
			CheckoutSessionID: resolved.Session.ID,
		}
	}

	// 6-7. Apply exactly once; an already-terminal session is a detected
	// no-op with no side effects re-fired
	outcome, err := s.transitions.ApplyPaymentOutcome(ctx, resolved.Session.ID, resolved.Detail.Status, resolved.Detail.ID)
	if err != nil {
		if ierr.IsInvalidTransition(err) {
			log.Errorw("invalid transition during reconciliation", "error", err)
			return &ReconciliationResult{
				Received:          true,
				Processed:         false,
				CheckoutSessionID: resolved.Session.ID,
				Error:             "invalid_transition",
			}
		}
		log.Errorw("failed to apply payment outcome", "error", err)
		return &ReconciliationResult{
			Received:          true,
			Processed:         false,
			CheckoutSessionID: resolved.Session.ID,
			Error:             "transition_failed",
		}
	}

	if !outcome.Applied {
		log.Infow("payment already settled, idempotent no-op",
			"payment_status", outcome.Session.PaymentStatus,
		)
		return &ReconciliationResult{
			Received:          true,
			Processed:         false,
			Duplicate:         true,
			Status:            string(resolved.Detail.Status),
			CheckoutSessionID: outcome.Session.ID,
		}
	}

	log.Infow("payment reconciled",
		"payment_status", outcome.Session.PaymentStatus,
		"gateway_payment_id", resolved.Detail.ID,
	)
	return &ReconciliationResult{
		Received:          true,
		Processed:         true,
		Status:            string(resolved.Detail.Status),
		CheckoutSessionID: outcome.Session.ID,
	}
}
