package v1

import (
	"net/http"

	"github.com/comanda/comanda/internal/api/dto"
	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/logger"
	"github.com/comanda/comanda/internal/service"
	"github.com/gin-gonic/gin"
)

type CredentialHandler struct {
	service service.CredentialService
	log     *logger.Logger
}

func NewCredentialHandler(service service.CredentialService, log *logger.Logger) *CredentialHandler {
	return &CredentialHandler{service: service, log: log}
}

// ConnectCredential stores the tenant's processor access token. The token is
// never logged and never echoed back; the response carries metadata only.
func (h *CredentialHandler) ConnectCredential(c *gin.Context) {
	var req dto.ConnectCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	cred, err := h.service.Connect(c.Request.Context(), req.AccessToken, req.Sandbox)
	if err != nil {
		h.log.Error("Failed to connect credential", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCredentialResponse(cred))
}

// GetCredential returns the tenant's credential metadata
func (h *CredentialHandler) GetCredential(c *gin.Context) {
	cred, err := h.service.Get(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to get credential", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCredentialResponse(cred))
}

// DisconnectCredential removes the tenant's credential
func (h *CredentialHandler) DisconnectCredential(c *gin.Context) {
	if err := h.service.Disconnect(c.Request.Context()); err != nil {
		h.log.Error("Failed to disconnect credential", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
