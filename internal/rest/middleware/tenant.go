package middleware

import (
	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/types"
	"github.com/gin-gonic/gin"
)

// TenantMiddleware extracts tenant and user identity from headers into the
// request context. Tenant-scoped routes require it; the webhook ingress does
// not, since tenant attribution there comes from credential resolution.
func TenantMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID := c.GetHeader(types.HeaderTenantID)
	if tenantID == "" {
		c.AbortWithStatusJSON(ierr.HTTPStatusFromErr(ierr.ErrPermissionDenied), ErrorResponse{
			Success: false,
			Error:   ErrorDetail{Display: "Tenant ID is required"},
		})
		return
	}
	ctx = types.SetTenantID(ctx, tenantID)

	if userID := c.GetHeader(types.HeaderUserID); userID != "" {
		ctx = types.SetUserID(ctx, userID)
	}

	c.Request = c.Request.WithContext(ctx)
	c.Next()
}
