package api

import (
	"net/http"

	authDelivery "jobtrack-backend/internal/auth/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	authHandler := authDelivery.NewAuthHandler(h.authUsecase)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/token", authHandler.IssueToken)
		}

		// Integration routes (protected)
		integrations := api.Group("/integrations")
		integrations.Use(authDelivery.AuthMiddleware(h.authUsecase))
		{
			integrations.GET("", h.ingestHandler.ListIntegrations)
			integrations.POST("/:provider/:accountKey", h.ingestHandler.Connect)
			integrations.DELETE("/:provider/:accountKey", h.ingestHandler.Disconnect)
			integrations.GET("/:provider/:accountKey", h.ingestHandler.GetIntegration)
			integrations.POST("/:provider/:accountKey/sync", h.ingestHandler.TriggerSync)
			integrations.GET("/:provider/:accountKey/runs", h.ingestHandler.ListRuns)
		}

		// Message review routes (protected)
		messages := api.Group("/messages")
		messages.Use(authDelivery.AuthMiddleware(h.authUsecase))
		{
			messages.GET("/pending", h.ingestHandler.ListPendingMessages)
			messages.POST("/:id/approve", h.ingestHandler.ApproveMessage)
			messages.POST("/:id/deny", h.ingestHandler.DenyMessage)
		}

		// Job application routes (protected)
		jobs := api.Group("/applications")
		jobs.Use(authDelivery.AuthMiddleware(h.authUsecase))
		{
			jobs.POST("", h.jobHandler.CreateApplication)
			jobs.GET("", h.jobHandler.ListApplications)
			jobs.GET("/:id/timeline", h.jobHandler.GetTimeline)
		}
	}
}
