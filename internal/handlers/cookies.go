package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace/api/internal/middleware"
)

const (
	RefreshCookie     = "RefreshToken"
	refreshCookiePath = "/api/Login"
)

func (h HandlerSet) setAuthCookies(c *gin.Context, accessToken string, accessExpires time.Time, refreshToken string, refreshExpires time.Time) {
	h.setCookie(c, middleware.AuthCookie, accessToken, "/", maxAge(accessExpires))
	h.setCookie(c, RefreshCookie, refreshToken, refreshCookiePath, maxAge(refreshExpires))
}

func (h HandlerSet) clearAuthCookies(c *gin.Context) {
	h.setCookie(c, middleware.AuthCookie, "", "/", -1)
	h.setCookie(c, RefreshCookie, "", refreshCookiePath, -1)
}

// setCookie writes an httpOnly cookie. SameSite=None needs Secure, so
// non-production runs use Lax over plain http.
func (h HandlerSet) setCookie(c *gin.Context, name, value, path string, age int) {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   h.cfg.Cookies.Domain,
		MaxAge:   age,
		HttpOnly: true,
	}
	if h.cfg.IsProduction() {
		cookie.SameSite = http.SameSiteNoneMode
		cookie.Secure = true
	} else {
		cookie.SameSite = http.SameSiteLaxMode
	}
	http.SetCookie(c.Writer, cookie)
}

func maxAge(expiresAt time.Time) int {
	seconds := int(time.Until(expiresAt).Seconds())
	if seconds < 1 {
		return -1
	}
	return seconds
}
