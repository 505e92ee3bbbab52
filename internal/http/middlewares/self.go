package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireSelfQuery rejects a request whose email query parameter does not
// match the authenticated identity. One student cannot read or mutate
// another student's data by swapping the email in the URL.
func RequireSelfQuery(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		requireSelf(c, c.Query(param))
	}
}

// RequireSelfParam is the path-parameter variant.
func RequireSelfParam(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		requireSelf(c, c.Param(param))
	}
}

func requireSelf(c *gin.Context, requested string) {
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

	if !strings.EqualFold(strings.TrimSpace(requested), email) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": gin.H{
				"code":    "forbidden",
				"message": "Access restricted to your own account",
			},
		})
		return
	}

	c.Next()
}
