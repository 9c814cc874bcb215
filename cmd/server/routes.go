package main

import (
	"time"

	"codeberg.org/iburba/server/api/rest/auth"
	"codeberg.org/iburba/server/api/rest/health"
	"codeberg.org/iburba/server/api/rest/tryon"
	"codeberg.org/iburba/server/api/rest/usage"
	"codeberg.org/iburba/server/internal/middleware"
	"codeberg.org/iburba/server/internal/ratelimit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) error {
	router.Use(
		middleware.RequestID(),
		middleware.Logging(),
		CORSMiddleware(server.config.Server.CORSAllowedOrigins),
	)

	router.GET("/health", health.Handler(server.stores.checks...))
	router.GET("/metrics", gin.WrapH(server.metrics.Handler()))

	limit, err := ratelimit.New(ratelimit.Config{
		Rate:  server.config.Server.RateLimit,
		Redis: server.redis,
	})
	if err != nil {
		return err
	}

	v1 := router.Group("/api/v1")
	v1.Use(limit, middleware.BodyLimit(server.config.Server.MaxRequestBodyBytes))

	{
		v1.GET("/ping", health.PingHandler)

		svc := server.services
		auth.RegisterRoutes(v1, server.stores.Accounts, svc.Tokens, svc.Ledger, svc.Gate, svc.Tokens.TTL())
		usage.RegisterRoutes(v1, svc.Ledger, svc.Gate)
		tryon.RegisterRoutes(v1, svc.Tryon)
	}

	return nil
}

// allows the configured frontends to call the API with bearer tokens
func CORSMiddleware(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	})
}
