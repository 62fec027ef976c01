package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace/api/internal/requests"
	"marketplace/api/internal/service"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	UserID                string    `json:"userId"`
	SessionID             string    `json:"sessionId"`
	Role                  string    `json:"role"`
	AccessToken           string    `json:"accessToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
}

// Login returns the access token in the body for bearer clients. The
// refresh token only ever travels in its cookie.
func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidBody})
		return
	}

	res := h.auth.Login(c.Request.Context(), service.LoginInput{
		Username:  req.Username,
		Password:  req.Password,
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	})
	if res.IsFailure() {
		respondFailure(c, res)
		return
	}

	out := res.Value()
	h.setAuthCookies(c, out.AccessToken, out.AccessTokenExpiresAt, out.RefreshToken, out.RefreshTokenExpiresAt)
	c.JSON(http.StatusOK, loginResponse{
		UserID:                out.UserID,
		SessionID:             out.SessionID,
		Role:                  string(out.Role),
		AccessToken:           out.AccessToken,
		AccessTokenExpiresAt:  out.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: out.RefreshTokenExpiresAt,
	})
}

type refreshResponse struct {
	SessionID            string    `json:"sessionId"`
	AccessToken          string    `json:"accessToken"`
	AccessTokenExpiresAt time.Time `json:"accessTokenExpiresAt"`
}

func (h HandlerSet) Refresh(c *gin.Context) {
	refreshToken, _ := c.Cookie(RefreshCookie)

	res := h.auth.Refresh(c.Request.Context(), refreshToken)
	if res.IsFailure() {
		respondFailure(c, res)
		return
	}

	out := res.Value()
	h.setAuthCookies(c, out.AccessToken, out.AccessTokenExpiresAt, out.RefreshToken, out.RefreshTokenExpiresAt)
	c.JSON(http.StatusOK, refreshResponse{
		SessionID:            out.SessionID,
		AccessToken:          out.AccessToken,
		AccessTokenExpiresAt: out.AccessTokenExpiresAt,
	})
}

type logoutRequest struct {
	SessionID string `json:"sessionId"`
}

// Logout clears both cookies whatever the outcome, so a client is never
// left holding tokens for a session it asked to end.
func (h HandlerSet) Logout(c *gin.Context) {
	var req logoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidBody})
		return
	}
	refreshToken, _ := c.Cookie(RefreshCookie)

	res := h.auth.Logout(c.Request.Context(), service.LogoutInput{
		SessionID:    req.SessionID,
		RefreshToken: refreshToken,
	})
	h.clearAuthCookies(c)
	if res.IsFailure() {
		respondFailure(c, res)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessionId": res.Value().SessionID})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h HandlerSet) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidBody})
		return
	}

	res := h.auth.ForgotPassword(c.Request.Context(), req.Email)
	if res.IsFailure() {
		respondFailure(c, res)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":   res.Value().Email,
		"message": res.Value().Message,
	})
}

func (h HandlerSet) ResetPassword(c *gin.Context) {
	var req requests.ResetPassword
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidBody})
		return
	}

	res := h.auth.ResetPassword(c.Request.Context(), req)
	if res.IsFailure() {
		respondFailure(c, res)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": res.Value().Message,
		"resetAt": res.Value().ResetAt,
	})
}
