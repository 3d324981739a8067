package security

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/comanda/comanda/internal/config"
	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVault(t *testing.T) Vault {
	t.Helper()
	v, err := NewVault(config.GetDefaultConfig(), logger.NewNopLogger())
	require.NoError(t, err)
	return v
}

func TestVaultRoundTrip(t *testing.T) {
	v := newTestVault(t)

	plaintext := "APP_USR-1234567890-access-token"
	blob, err := v.Encrypt(plaintext)
	require.NoError(t, err)
	require.NotEmpty(t, blob)
	assert.NotContains(t, blob, plaintext)
	assert.Len(t, strings.Split(blob, "."), 3)

	decrypted, err := v.Decrypt(blob)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestVaultNonceIsFresh(t *testing.T) {
	v := newTestVault(t)

	first, err := v.Encrypt("same-secret")
	require.NoError(t, err)
	second, err := v.Encrypt("same-secret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVaultTamperedBlob(t *testing.T) {
	v := newTestVault(t)

	blob, err := v.Encrypt("APP_USR-sensitive")
	require.NoError(t, err)

	// Flip a character in the ciphertext component
	parts := strings.Split(blob, ".")
	ct := []byte(parts[2])
	if ct[0] == 'A' {
		ct[0] = 'B'
	} else {
		ct[0] = 'A'
	}
	parts[2] = string(ct)

	_, err = v.Decrypt(strings.Join(parts, "."))
	require.Error(t, err)
	assert.True(t, ierr.IsIntegrity(err))
}

func TestVaultMalformedBlob(t *testing.T) {
	v := newTestVault(t)

	cases := []string{
		"",
		"not-a-blob",
		"only.two",
		"a.b.c.d",
		"!!!.###.$$$",
	}
	for _, blob := range cases {
		_, err := v.Decrypt(blob)
		require.Error(t, err, "blob %q should not decrypt", blob)
		assert.True(t, ierr.IsIntegrity(err), "blob %q should fail integrity", blob)
	}
}

func TestVaultRejectsBadKey(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Secrets.EncryptionKey = "deadbeef" // 4 bytes, not 32

	_, err := NewVault(cfg, logger.NewNopLogger())
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))

	cfg.Secrets.EncryptionKey = ""
	_, err = NewVault(cfg, logger.NewNopLogger())
	require.Error(t, err)
}

func TestVaultAcceptsBase64Key(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Secrets.EncryptionKey = base64.StdEncoding.EncodeToString(make([]byte, 32))

	v, err := NewVault(cfg, logger.NewNopLogger())
	require.NoError(t, err)

	blob, err := v.Encrypt("token")
	require.NoError(t, err)
	decrypted, err := v.Decrypt(blob)
	require.NoError(t, err)
	assert.Equal(t, "token", decrypted)
}

func TestVaultHash(t *testing.T) {
	v := newTestVault(t)

	assert.Equal(t, v.Hash("value"), v.Hash("value"))
	assert.NotEqual(t, v.Hash("value"), v.Hash("other"))
	assert.Empty(t, v.Hash(""))
	assert.Len(t, v.Hash("value"), 64)
}
