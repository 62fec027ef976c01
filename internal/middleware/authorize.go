package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace/api/internal/models"
	"marketplace/api/internal/service"
)

const msgForbidden = "You do not have permission to access this resource."

// RequireRoles must run after Auth.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": service.MsgInvalidCredentials})
			return
		}

		if _, ok := roleSet[user.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": msgForbidden})
			return
		}

		c.Next()
	}
}
