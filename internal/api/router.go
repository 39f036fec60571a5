package api

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/hidecraft/storefront-webhooks/internal/api/v1"
	"github.com/hidecraft/storefront-webhooks/internal/config"
	"github.com/hidecraft/storefront-webhooks/internal/rest/middleware"
)

type Handlers struct {
	Health  *v1.HealthHandler
	Webhook *v1.WebhookHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration) *gin.Engine {
	router := gin.Default()

	router.Use(
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	webhooks := router.Group("/webhooks")
	{
		webhooks.GET("/orders", handlers.Webhook.OrderWebhookProbe)
		webhooks.POST("/orders", handlers.Webhook.HandleOrderWebhook)
		webhooks.GET("/payment", handlers.Webhook.PaymentWebhookProbe)
		webhooks.POST("/payment", handlers.Webhook.HandlePaymentWebhook)
	}

	return router
}
