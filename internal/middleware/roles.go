package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JoeLeDev/RSs/internal/models"
)

// RequireRole rejects callers whose global role is not in the allowed set.
// It must run after AuthMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "User not authenticated",
			})
			c.Abort()
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"error":     "Insufficient permissions",
			"user_role": string(user.Role),
		})
		c.Abort()
	}
}
