package credential

import (
	"time"

	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/types"
)

// Credential is a tenant's payment-processor access token, encrypted at
// rest. Ciphertext is only ever decrypted transiently by the credential
// vault and must never appear in logs or API responses.
type Credential struct {
	ID string `db:"id" json:"id"`
	// Ciphertext is the vault blob (nonce.authTag.ciphertext, base64url)
	Ciphertext string `db:"ciphertext" json:"-"`
	// Last4 is a display hint so staff can recognize the connected token
	Last4 string `db:"last4" json:"last4"`
	// Sandbox marks test-mode processor credentials
	Sandbox bool `db:"sandbox" json:"sandbox"`

	types.BaseModel
}

func (c *Credential) Validate() error {
	if c.TenantID == "" {
		return ierr.NewError("missing tenant id").
			WithHint("Credential must belong to a tenant").
			Mark(ierr.ErrValidation)
	}
	if c.Ciphertext == "" {
		return ierr.NewError("missing ciphertext").
			WithHint("Credential must carry an encrypted token").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// New builds a credential row for a tenant from an already-encrypted blob
func New(tenantID, ciphertext, last4 string, sandbox bool, now time.Time) *Credential {
	return &Credential{
		ID:         types.GenerateUUIDWithPrefix(types.UUIDPrefixCredential),
		Ciphertext: ciphertext,
		Last4:      last4,
		Sandbox:    sandbox,
		BaseModel: types.BaseModel{
			TenantID:  tenantID,
			Status:    types.StatusPublished,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}
