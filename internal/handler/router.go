package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/docvault/internal/config"
	"github.com/xxxsen/docvault/internal/middleware"
)

type RouterDeps struct {
	Shares           *ShareHandler
	Health           *HealthHandler
	Metrics          http.Handler
	ResolveRateLimit config.RateLimitConfig
	JWTSecret        []byte
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/health", deps.Health.Get)
	if deps.Metrics != nil {
		api.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	shares := api.Group("/shares")
	authed := shares.Group("")
	authed.Use(middleware.JWTAuth(deps.JWTSecret))
	authed.POST("/document/:id", deps.Shares.CreateDocument)
	authed.POST("/folder/:id", deps.Shares.CreateFolder)
	authed.POST("/multiple", deps.Shares.CreateMultiple)
	authed.GET("/received", deps.Shares.Received)

	limit := deps.ResolveRateLimit
	shares.GET("/:token",
		middleware.RateLimit(time.Duration(limit.WindowSeconds)*time.Second, limit.MaxRequests),
		middleware.OptionalJWTAuth(deps.JWTSecret),
		deps.Shares.Get,
	)
}
