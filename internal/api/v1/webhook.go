package v1

import (
	"io"
	"net/http"

	"github.com/comanda/comanda/internal/logger"
	"github.com/comanda/comanda/internal/service"
	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	reconciler service.WebhookReconcilerService
	log        *logger.Logger
}

func NewWebhookHandler(reconciler service.WebhookReconcilerService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{reconciler: reconciler, log: log}
}

// HandleMercadoPago is the processor notification ingress. It always
// responds 200 so the processor stops retrying; outcomes, including
// rejections, are reported in the body. The route is unauthenticated by
// necessity, which is why signature verification and tenant resolution
// happen inside the reconciler rather than in middleware.
func (h *WebhookHandler) HandleMercadoPago(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.log.Error("Failed to read webhook body", "error", err)
		c.JSON(http.StatusOK, service.ReconciliationResult{Received: true, Error: "unreadable_body"})
		return
	}

	notificationID := c.Query("data.id")
	if notificationID == "" {
		notificationID = c.Query("id")
	}
	notificationType := c.Query("type")
	if notificationType == "" {
		notificationType = c.Query("topic")
	}

	result := h.reconciler.Handle(c.Request.Context(), &service.WebhookInput{
		RawBody:          body,
		SignatureHeader:  c.GetHeader("x-signature"),
		RequestID:        c.GetHeader("x-request-id"),
		NotificationType: notificationType,
		NotificationID:   notificationID,
	})

	c.JSON(http.StatusOK, result)
}
