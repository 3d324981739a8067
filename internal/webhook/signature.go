package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/comanda/comanda/internal/config"
	"github.com/comanda/comanda/internal/logger"
)

// Rejection reasons reported by the signature verifier. These are values,
// not errors: a bad signature is an expected, routine occurrence.
const (
	ReasonMissingHeader      = "missing_header"
	ReasonInvalidFormat      = "invalid_format"
	ReasonSignatureMismatch  = "signature_mismatch"
	ReasonTimestampExpired   = "timestamp_expired"
	ReasonNoSecretConfigured = "no_secret_configured"
)

// maxSignatureAge bounds replay risk: a cryptographically valid but stale
// signature is still rejected.
const maxSignatureAge = 5 * time.Minute

// VerificationResult reports whether a notification's signature checked out
type VerificationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// SignatureVerifier validates inbound notification authenticity and
// freshness. The processor signs a canonical manifest
// `id:<notificationID>;request-id:<requestID>;ts:<ts>;` with HMAC-SHA256
// and sends it as `ts=<unix>,v1=<hex>` in the signature header.
type SignatureVerifier struct {
	secret string
	logger *logger.Logger
	now    func() time.Time
}

// NewSignatureVerifier builds a verifier from the configured shared secret.
// An empty secret turns verification into an explicit bypass intended for
// non-production environments only; every bypass is logged as a warning.
func NewSignatureVerifier(cfg *config.Configuration, log *logger.Logger) *SignatureVerifier {
	return &SignatureVerifier{
		secret: cfg.Secrets.WebhookSecret,
		logger: log,
		now:    time.Now,
	}
}

// Verify checks the signature header against the notification identifiers
func (v *SignatureVerifier) Verify(signatureHeader, requestID, notificationID string) VerificationResult {
	if v.secret == "" {
		v.logger.Warnw("webhook signature verification bypassed: no secret configured",
			"request_id", requestID,
			"notification_id", notificationID,
		)
		return VerificationResult{Valid: true, Reason: ReasonNoSecretConfigured}
	}

	if signatureHeader == "" {
		return VerificationResult{Valid: false, Reason: ReasonMissingHeader}
	}

	ts, v1, ok := parseSignatureHeader(signatureHeader)
	if !ok {
		return VerificationResult{Valid: false, Reason: ReasonInvalidFormat}
	}

	tsUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return VerificationResult{Valid: false, Reason: ReasonInvalidFormat}
	}

	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", notificationID, requestID, ts)
	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write([]byte(manifest))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(v1))) {
		return VerificationResult{Valid: false, Reason: ReasonSignatureMismatch}
	}

	age := v.now().UTC().Sub(time.Unix(tsUnix, 0).UTC())
	if age > maxSignatureAge {
		return VerificationResult{Valid: false, Reason: ReasonTimestampExpired}
	}

	return VerificationResult{Valid: true}
}

// parseSignatureHeader extracts ts and v1 from `ts=<unix>,v1=<hex>`
func parseSignatureHeader(header string) (ts string, v1 string, ok bool) {
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "ts":
			ts = kv[1]
		case "v1":
			v1 = kv[1]
		}
	}
	if ts == "" || v1 == "" {
		return "", "", false
	}
	return ts, v1, true
}
