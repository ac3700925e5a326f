package router

import (
	"github.com/spedigo-next/internal/config"
	adminhandlers "github.com/spedigo-next/internal/http/handlers/admin"
	webhookhandlers "github.com/spedigo-next/internal/http/handlers/webhook"
	"github.com/spedigo-next/internal/logger"
	"github.com/spedigo-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter initializes the HTTP routes.
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	webhookHandler := webhookhandlers.New(c)
	adminHandler := adminhandlers.New(c)

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Inbound webhooks authenticate per-request (HMAC / shared token), not
	// via the operator JWT.
	webhooks := r.Group("/webhooks")
	{
		webhooks.POST("/shopify/orders-update", webhookHandler.HandleOrdersUpdate)
		webhooks.POST("/carrier/events", webhookHandler.HandleCarrierEvents)
	}

	apiV1 := r.Group("/api/v1")
	{
		admin := apiV1.Group("/admin")
		{
			admin.POST("/login", adminHandler.Login)

			authorized := admin.Group("")
			authorized.Use(JWTAuthMiddleware(c.AuthService))
			{
				authorized.PUT("/me/password", adminHandler.ChangePassword)
				authorized.GET("/shipments", adminHandler.ListShipments)
				authorized.GET("/shipments/:order_id", adminHandler.GetShipment)
				authorized.POST("/shipments/:order_id/resend-alert", adminHandler.ResendAlert)
				authorized.GET("/customs-documents", adminHandler.ListCustomsDocuments)
				authorized.GET("/webhook-events", adminHandler.ListWebhookEvents)
			}
		}
	}

	return r
}
