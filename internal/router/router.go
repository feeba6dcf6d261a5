// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/rental-backend/internal/config"
	"github.com/javajoker/rental-backend/internal/handlers"
	"github.com/javajoker/rental-backend/internal/metrics"
	"github.com/javajoker/rental-backend/internal/middleware"
	"github.com/javajoker/rental-backend/internal/utils"
)

func Initialize(svc *Services, cfg *config.Config) *gin.Engine {
	// Initialize handlers
	contractHandler := handlers.NewContractHandler(svc.Contracts, svc.Sweeper)
	requestHandler := handlers.NewChangeRequestHandler(svc.ChangeRequests)
	notificationHandler := handlers.NewNotificationHandler(svc.Notifications)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	metricsHandler, err := metrics.Register(nil)
	if err != nil {
		logrus.WithError(err).Warn("Failed to register metrics collectors")
	}

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.AllowedOrigins))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.NewRateLimiterFromConfig(cfg.RateLimit).Middleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})
	r.GET("/metrics", gin.WrapH(metricsHandler))

	// API v1 routes
	v1 := r.Group("/v1")
	v1.Use(middleware.AuthRequired())
	{
		contracts := v1.Group("/contracts")
		{
			contracts.GET("", contractHandler.ListContracts)
			contracts.POST("", contractHandler.CreateContract)
			contracts.POST("/expire-check", contractHandler.ExpireCheck)
			contracts.GET("/:id", contractHandler.GetContract)
			contracts.PUT("/:id", contractHandler.ModifyContract)
			contracts.PUT("/:id/sign", contractHandler.SignContract)
			contracts.GET("/:id/versions", contractHandler.ListVersions)
			contracts.GET("/:id/download", contractHandler.DownloadContract)
			contracts.PUT("/:id/apply-modification", contractHandler.ApplyModification)
			contracts.GET("/:id/pending-requests", requestHandler.ListPending)
			contracts.POST("/:id/request-modification", requestHandler.RequestModification)
			contracts.POST("/:id/request-termination", requestHandler.RequestTermination)
		}

		requests := v1.Group("/change-requests")
		{
			requests.GET("/:id", requestHandler.GetRequest)
			requests.PUT("/:id/respond", requestHandler.Respond)
		}

		v1.GET("/users/me/requests", requestHandler.ListMine)

		notifications := v1.Group("/notifications")
		{
			notifications.GET("", notificationHandler.List)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
		}
	}

	return r
}
