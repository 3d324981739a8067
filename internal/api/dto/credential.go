package dto

import (
	"time"

	"github.com/comanda/comanda/internal/domain/credential"
	"github.com/comanda/comanda/internal/validator"
)

// ConnectCredentialRequest represents the request to connect a tenant's
// payment-processor access token. The token is accepted once, encrypted and
// never returned.
type ConnectCredentialRequest struct {
	AccessToken string `json:"access_token" binding:"required" validate:"required,min=8"`
	Sandbox     bool   `json:"sandbox"`
}

func (r *ConnectCredentialRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// CredentialResponse represents credential metadata in responses. It never
// carries token material in any form.
type CredentialResponse struct {
	ID        string    `json:"id"`
	Last4     string    `json:"last4"`
	Sandbox   bool      `json:"sandbox"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToCredentialResponse converts a domain Credential to a CredentialResponse
func ToCredentialResponse(c *credential.Credential) *CredentialResponse {
	return &CredentialResponse{
		ID:        c.ID,
		Last4:     c.Last4,
		Sandbox:   c.Sandbox,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
