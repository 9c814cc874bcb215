package auth

import (
	"errors"

	"codeberg.org/iburba/server/iburba/accounts"
	apierrors "codeberg.org/iburba/server/internal/errors"
	"codeberg.org/iburba/server/internal/logger"
	"github.com/gin-gonic/gin"
)

// resolves the Authorization header and adds the identity to context
func AuthMiddleware(resolver Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			apierrors.Unauthorized(c, "authorization header required")
			c.Abort()
			return
		}

		identity, err := resolver.Resolve(c.Request.Context(), authHeader)
		if err != nil {
			if errors.Is(err, ErrUnauthenticated) {
				apierrors.Unauthorized(c, "invalid or expired token")
			} else {
				// the account store is unreachable, the credential may still be good
				logger.FromContext(c.Request.Context()).Error("failed to authenticate", "error", err)
				apierrors.ServiceUnavailable(c, "authentication temporarily unavailable, please retry")
			}

			c.Abort()
			return
		}

		c.Set("user_id", identity.UserID)
		c.Set("user_email", identity.Email)
		c.Set("user_plan", string(identity.Plan))

		c.Next()
	}
}

// extracts user_id from context after AuthMiddleware
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	return userID, userID != ""
}

// extracts the identity from context after AuthMiddleware
func GetIdentity(c *gin.Context) (*Identity, bool) {
	userID, ok := GetUserID(c)
	if !ok {
		return nil, false
	}

	return &Identity{
		UserID: userID,
		Email:  c.GetString("user_email"),
		Plan:   accounts.Plan(c.GetString("user_plan")),
	}, true
}
