package http

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/cartloop/insights/internal/domain/auth"
	"github.com/cartloop/insights/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, insightsHandler *InsightsHandler, authHandler *AuthHandler, authSvc auth.Service, logger *slog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, logger),
	)

	api := router.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.GET("/google/login", authHandler.GoogleLogin)
			authGroup.GET("/google/callback", authHandler.GoogleCallback)

			session := authGroup.Group("", authMiddleware(authSvc))
			{
				session.GET("/profile", authHandler.Profile)
				session.POST("/logout", authHandler.Logout)
			}
		}

		// Analytics are staff only.
		insightsGroup := api.Group("/insights", authMiddleware(authSvc), requireRole(auth.RoleAdmin))
		{
			insightsGroup.GET("/forecast", insightsHandler.Forecast)
			insightsGroup.GET("/seasonality", insightsHandler.Seasonality)
			insightsGroup.GET("/segments", insightsHandler.Segments)
			insightsGroup.GET("/segments/:id", insightsHandler.CustomerSegment)
			insightsGroup.GET("/inventory", insightsHandler.Inventory)
			insightsGroup.GET("/portfolio", insightsHandler.Portfolio)
			insightsGroup.GET("/products/:id/advice", insightsHandler.ProductAdvice)
			insightsGroup.GET("/overview", insightsHandler.Overview)
			insightsGroup.POST("/digest", insightsHandler.Digest)
		}

		products := api.Group("/products", authMiddleware(authSvc))
		{
			products.GET("/:id/related", insightsHandler.RelatedProducts)
		}
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
