package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/golf-caddie/internal/api/handlers"
	"github.com/stitts-dev/golf-caddie/internal/api/middleware"
	"github.com/stitts-dev/golf-caddie/pkg/config"
)

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(
	cfg *config.Config,
	caddieHandler *handlers.CaddieHandler,
	bagHandler *handlers.BagHandler,
	healthHandler *handlers.HealthHandler,
	logger *logrus.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(logger), corsMiddleware(cfg.CorsOrigins))

	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)

	limiter := middleware.NewClientRateLimiter(cfg.APIRateLimit, cfg.APIRateBurst)

	apiV1 := router.Group("/api/v1")
	apiV1.Use(middleware.OptionalAuth(cfg.JWTSecret), middleware.RateLimit(limiter))
	{
		apiV1.POST("/caddie/decision", caddieHandler.MakeDecision)
		apiV1.GET("/caddie/decisions", caddieHandler.ListDecisions)

		apiV1.GET("/bag/:player_id", bagHandler.GetBag)
		apiV1.PATCH("/bag/:player_id/clubs", bagHandler.UpdateClubs)
		apiV1.POST("/bag/:player_id/shots", bagHandler.RecordShot)
		apiV1.GET("/bag/:player_id/readiness", bagHandler.GetReadiness)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		for _, allowed := range allowedOrigins {
			if origin == allowed {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Credentials", "true")
				break
			}
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
