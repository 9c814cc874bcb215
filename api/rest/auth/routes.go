package auth

import (
	"time"

	"codeberg.org/iburba/server/internal/auth"
	"github.com/gin-gonic/gin"
)

// registers all authentication routes
func RegisterRoutes(
	router *gin.RouterGroup,
	store AccountStore,
	tokens TokenIssuer,
	usage UsageReader,
	resolver auth.Resolver,
	ttl time.Duration,
) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", RegisterHandler(store, tokens, ttl))
		authGroup.POST("/login", LoginHandler(store, tokens, usage, ttl))
		authGroup.GET("/me", auth.AuthMiddleware(resolver), GetCurrentUserHandler(store, usage))
	}
}
