package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"
	"strings"

	"github.com/comanda/comanda/internal/config"
	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/logger"
)

// Vault encrypts and decrypts tenant payment-processor credentials at rest.
// Blobs are stored as three base64url components joined by '.':
// nonce.authTag.ciphertext. Decrypted plaintext is only ever held
// transiently and must never be logged or persisted.
type Vault interface {
	// Encrypt seals plaintext under AES-256-GCM with a fresh random nonce
	Encrypt(plaintext string) (string, error)

	// Decrypt opens a blob produced by Encrypt. A malformed blob or a
	// failed auth tag verification yields an integrity error.
	Decrypt(blob string) (string, error)

	// Hash creates a one-way SHA-256 hash of the input value
	Hash(value string) string
}

const (
	blobSeparator = "."
	tagSize       = 16
)

type aesVault struct {
	aead   cipher.AEAD
	logger *logger.Logger
}

// NewVault creates a credential vault from the configured 32-byte master
// key. Missing or malformed key material is a fatal startup error.
func NewVault(cfg *config.Configuration, log *logger.Logger) (Vault, error) {
	key, err := cfg.Secrets.DecodeEncryptionKey()
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Credential vault requires a 32 byte key as 64 hex chars or base64").
			Mark(ierr.ErrValidation)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to initialize cipher").
			Mark(ierr.ErrSystem)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to initialize GCM").
			Mark(ierr.ErrSystem)
	}

	return &aesVault{
		aead:   aead,
		logger: log,
	}, nil
}

func (v *aesVault) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to generate nonce").
			Mark(ierr.ErrSystem)
	}

	// Seal appends the auth tag to the ciphertext; split it back out so the
	// stored blob carries nonce, tag and ciphertext as separate components
	sealed := v.aead.Seal(nil, nonce, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	enc := base64.RawURLEncoding
	parts := []string{
		enc.EncodeToString(nonce),
		enc.EncodeToString(tag),
		enc.EncodeToString(ciphertext),
	}
	return strings.Join(parts, blobSeparator), nil
}

func (v *aesVault) Decrypt(blob string) (string, error) {
	parts := strings.Split(blob, blobSeparator)
	if len(parts) != 3 {
		return "", ierr.NewError("malformed credential blob").
			WithHint("Stored credential could not be decoded").
			WithReportableDetails(map[string]any{
				"components": len(parts),
			}).
			Mark(ierr.ErrIntegrity)
	}

	enc := base64.RawURLEncoding
	nonce, err := enc.DecodeString(parts[0])
	if err != nil {
		return "", v.integrityError(err)
	}
	tag, err := enc.DecodeString(parts[1])
	if err != nil {
		return "", v.integrityError(err)
	}
	ciphertext, err := enc.DecodeString(parts[2])
	if err != nil {
		return "", v.integrityError(err)
	}

	if len(nonce) != v.aead.NonceSize() || len(tag) != tagSize {
		return "", v.integrityError(nil)
	}

	sealed := append(ciphertext, tag...)
	plaintext, err := v.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", v.integrityError(err)
	}

	return string(plaintext), nil
}

func (v *aesVault) integrityError(err error) error {
	builder := ierr.NewError("credential integrity check failed").
		WithHint("Stored credential is corrupted or was tampered with")
	if err != nil {
		builder = ierr.WithError(err).
			WithHint("Stored credential is corrupted or was tampered with")
	}
	return builder.Mark(ierr.ErrIntegrity)
}

func (v *aesVault) Hash(value string) string {
	if value == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
