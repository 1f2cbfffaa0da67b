// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-api/internal/domain/user"
	"github.com/your-org/storefront-api/internal/pkg/auth"
)

// Context keys set by the auth guard
const (
	ContextUserKey   = "user"
	ContextUserIDKey = "user_id"
)

// UserResolver loads the user an access token refers to
type UserResolver interface {
	GetByID(ctx context.Context, id uint) (*user.User, error)
}

// AuthMiddleware requires a valid bearer access token and attaches the user
func AuthMiddleware(jwtManager *auth.JWTManager, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer") {
			claims, err := jwtManager.ValidateAccessToken(auth.ExtractTokenFromHeader(authHeader))
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					abortUnauthorized(c, "Token expired")
					return
				}
				abortUnauthorized(c, "Not authorized, token failed")
				return
			}

			u, err := users.GetByID(c.Request.Context(), claims.ID)
			if err != nil {
				abortUnauthorized(c, "Not authorized, token failed")
				return
			}

			c.Set(ContextUserKey, u)
			c.Set(ContextUserIDKey, u.ID)
			c.Next()
			return
		}

		// A refresh cookie never authorizes a protected action by itself
		if cookie, err := c.Cookie(auth.RefreshCookieName); err == nil && cookie != "" {
			abortUnauthorized(c, "Please provide access token in Authorization header")
			return
		}

		abortUnauthorized(c, "Not authorized, no token")
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": message})
}

// GetUserIDFromContext extracts user ID from gin context
func GetUserIDFromContext(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}
