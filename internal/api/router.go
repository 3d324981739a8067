package api

import (
	v1 "github.com/comanda/comanda/internal/api/v1"
	"github.com/comanda/comanda/internal/rest/middleware"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health     *v1.HealthHandler
	Order      *v1.OrderHandler
	Checkout   *v1.CheckoutHandler
	Credential *v1.CredentialHandler
	Webhook    *v1.WebhookHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.ErrorHandler())

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	// Webhook ingress is unauthenticated; the reconciler verifies signatures
	// and attributes tenants itself
	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/mercadopago", handlers.Webhook.HandleMercadoPago)
	}

	// Tenant-scoped routes
	tenant := router.Group("")
	tenant.Use(middleware.TenantMiddleware)
	{
		orders := tenant.Group("/orders")
		{
			orders.POST("", handlers.Order.CreateOrder)
			orders.GET("", handlers.Order.ListOrders)
			orders.GET("/:id", handlers.Order.GetOrder)
			orders.POST("/:id/status", handlers.Order.UpdateOrderStatus)
		}

		checkouts := tenant.Group("/checkouts")
		{
			checkouts.POST("", handlers.Checkout.CreateCheckout)
			checkouts.GET("/:id", handlers.Checkout.GetCheckout)
		}

		credentials := tenant.Group("/credentials")
		{
			credentials.POST("", handlers.Credential.ConnectCredential)
			credentials.GET("", handlers.Credential.GetCredential)
			credentials.DELETE("", handlers.Credential.DisconnectCredential)
		}
	}
}
