package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/comanda/comanda/internal/config"
	"github.com/comanda/comanda/internal/logger"
	"github.com/stretchr/testify/assert"
)

const testSecret = "whsec_test_secret"

func newTestVerifier(secret string, now time.Time) *SignatureVerifier {
	cfg := config.GetDefaultConfig()
	cfg.Secrets.WebhookSecret = secret
	v := NewSignatureVerifier(cfg, logger.NewNopLogger())
	v.now = func() time.Time { return now }
	return v
}

func sign(secret, notificationID, requestID string, ts int64) string {
	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%d;", notificationID, requestID, ts)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	return fmt.Sprintf("ts=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyValidSignature(t *testing.T) {
	now := time.Now().UTC()
	v := newTestVerifier(testSecret, now)

	header := sign(testSecret, "12345", "req-1", now.Unix())
	result := v.Verify(header, "req-1", "12345")

	assert.True(t, result.Valid)
	assert.Empty(t, result.Reason)
}

func TestVerifySignatureAtEdgeOfWindow(t *testing.T) {
	// Whole-second clock so the age is exactly the window, not a hair over
	now := time.Now().UTC().Truncate(time.Second)
	v := newTestVerifier(testSecret, now)

	// Exactly five minutes old is still accepted
	ts := now.Add(-5 * time.Minute).Unix()
	result := v.Verify(sign(testSecret, "12345", "req-1", ts), "req-1", "12345")
	assert.True(t, result.Valid)
}

func TestVerifyExpiredTimestamp(t *testing.T) {
	now := time.Now().UTC()
	v := newTestVerifier(testSecret, now)

	ts := now.Add(-301 * time.Second).Unix()
	result := v.Verify(sign(testSecret, "12345", "req-1", ts), "req-1", "12345")

	assert.False(t, result.Valid)
	assert.Equal(t, ReasonTimestampExpired, result.Reason)
}

func TestVerifySignatureMismatch(t *testing.T) {
	now := time.Now().UTC()
	v := newTestVerifier(testSecret, now)

	header := sign("wrong_secret", "12345", "req-1", now.Unix())
	result := v.Verify(header, "req-1", "12345")

	assert.False(t, result.Valid)
	assert.Equal(t, ReasonSignatureMismatch, result.Reason)
}

func TestVerifyMismatchReportedBeforeExpiry(t *testing.T) {
	now := time.Now().UTC()
	v := newTestVerifier(testSecret, now)

	// Both stale and forged; the mismatch is what gets reported
	ts := now.Add(-time.Hour).Unix()
	result := v.Verify(sign("wrong_secret", "12345", "req-1", ts), "req-1", "12345")

	assert.False(t, result.Valid)
	assert.Equal(t, ReasonSignatureMismatch, result.Reason)
}

func TestVerifyTamperedManifest(t *testing.T) {
	now := time.Now().UTC()
	v := newTestVerifier(testSecret, now)

	// Signed for one notification, presented for another
	header := sign(testSecret, "12345", "req-1", now.Unix())
	result := v.Verify(header, "req-1", "99999")

	assert.False(t, result.Valid)
	assert.Equal(t, ReasonSignatureMismatch, result.Reason)
}

func TestVerifyMissingHeader(t *testing.T) {
	v := newTestVerifier(testSecret, time.Now().UTC())

	result := v.Verify("", "req-1", "12345")

	assert.False(t, result.Valid)
	assert.Equal(t, ReasonMissingHeader, result.Reason)
}

func TestVerifyInvalidFormat(t *testing.T) {
	v := newTestVerifier(testSecret, time.Now().UTC())

	cases := []string{
		"garbage",
		"ts=123",
		"v1=abcdef",
		"ts=notanumber,v1=abcdef",
	}
	for _, header := range cases {
		result := v.Verify(header, "req-1", "12345")
		assert.False(t, result.Valid, "header %q should be rejected", header)
		assert.Equal(t, ReasonInvalidFormat, result.Reason, "header %q", header)
	}
}

func TestVerifyBypassWithoutSecret(t *testing.T) {
	v := newTestVerifier("", time.Now().UTC())

	result := v.Verify("", "req-1", "12345")

	assert.True(t, result.Valid)
	assert.Equal(t, ReasonNoSecretConfigured, result.Reason)
}
