package middlewares

import (
	"context"
	"net/http"

	"github.com/geocoder89/classhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// RoleResolver looks up the caller's current role. Tokens carry only the
// email; the role is re-read per request so a promotion or demotion takes
// effect without reissuing tokens, and a forged role claim buys nothing.
type RoleResolver interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

func (m *AuthMiddleware) RequireRole(resolver RoleResolver, required user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, ok := EmailFromContext(c)

		if !ok || email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing identity context",
				},
			})
			return
		}

		u, err := resolver.GetByEmail(c.Request.Context(), email)

		if err != nil || u.Role != required {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Insufficient role",
				},
			})
			return
		}

		c.Next()
	}
}
