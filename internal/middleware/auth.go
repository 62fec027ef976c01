package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"marketplace/api/internal/models"
	"marketplace/api/internal/result"
	"marketplace/api/internal/security"
	"marketplace/api/internal/service"
)

const (
	// AuthCookie carries the access token for browser clients.
	AuthCookie = "AuthToken"

	currentUserKey  = "current_user"
	accessClaimsKey = "access_claims"
	accessTokenKey  = "access_token"
)

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) result.Result[service.Principal]
}

// Auth resolves the caller from the AuthToken cookie, falling back to an
// Authorization bearer header.
func Auth(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := accessToken(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": service.MsgInvalidCredentials})
			return
		}

		principal := authenticator.Authenticate(c.Request.Context(), tokenStr)
		if principal.IsFailure() {
			c.AbortWithStatusJSON(principal.HTTPStatus(), gin.H{"message": principal.Message()})
			return
		}

		c.Set(accessTokenKey, tokenStr)
		c.Set(accessClaimsKey, principal.Value().Claims)
		c.Set(currentUserKey, principal.Value().User)

		c.Next()
	}
}

func accessToken(c *gin.Context) string {
	if cookie, err := c.Cookie(AuthCookie); err == nil && strings.TrimSpace(cookie) != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

// CurrentUser returns the user set by Auth.
func CurrentUser(c *gin.Context) (models.User, bool) {
	userVal, exists := c.Get(currentUserKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := userVal.(models.User)
	return user, ok
}

func AccessClaims(c *gin.Context) (*security.AccessClaims, bool) {
	claimsVal, exists := c.Get(accessClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := claimsVal.(*security.AccessClaims)
	return claims, ok && claims != nil
}
