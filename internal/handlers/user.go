package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace/api/internal/middleware"
	"marketplace/api/internal/models"
	"marketplace/api/internal/requests"
)

type addressResponse struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type userResponse struct {
	ID             string          `json:"id"`
	Username       string          `json:"username"`
	Email          string          `json:"email"`
	FirstName      string          `json:"firstName"`
	LastName       string          `json:"lastName"`
	Role           string          `json:"role"`
	EmailValidated bool            `json:"emailValidated"`
	LastLoginAt    *time.Time      `json:"lastLoginAt,omitempty"`
	Address        addressResponse `json:"address"`
}

func toAddressResponse(a models.Address) addressResponse {
	return addressResponse{
		Street:     a.Street,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

func (h HandlerSet) ValidateEmail(c *gin.Context) {
	res := h.auth.ValidateEmail(c.Request.Context(), c.Param("id"))
	if res.IsFailure() {
		respondFailure(c, res)
		return
	}
	c.JSON(http.StatusOK, gin.H{"validated": res.Value()})
}

func (h HandlerSet) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": userResponse{
			ID:             user.ID,
			Username:       user.Username,
			Email:          user.Email,
			FirstName:      user.FirstName,
			LastName:       user.LastName,
			Role:           string(user.Role),
			EmailValidated: user.EmailValidated,
			LastLoginAt:    user.LastLoginAt,
			Address:        toAddressResponse(user.Address),
		},
	})
}

type sessionResponse struct {
	ID          string     `json:"id"`
	IPAddress   string     `json:"ipAddress"`
	UserAgent   string     `json:"userAgent"`
	CreatedAt   time.Time  `json:"createdAt"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	LoggedOutAt *time.Time `json:"loggedOutAt,omitempty"`
	Active      bool       `json:"active"`
	Current     bool       `json:"current"`
}

func (h HandlerSet) ListSessions(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var currentSessionID string
	if claims, ok := middleware.AccessClaims(c); ok {
		currentSessionID = claims.SessionID
	}

	res := h.auth.Sessions(c.Request.Context(), user.ID)
	if res.IsFailure() {
		respondFailure(c, res)
		return
	}

	now := time.Now()
	resp := make([]sessionResponse, 0, len(res.Value()))
	for _, session := range res.Value() {
		resp = append(resp, sessionResponse{
			ID:          session.ID,
			IPAddress:   session.IPAddress,
			UserAgent:   session.UserAgent,
			CreatedAt:   session.CreatedAt,
			ExpiresAt:   session.ExpiresAt,
			LoggedOutAt: session.LoggedOutAt,
			Active:      session.IsActive(now),
			Current:     session.ID == currentSessionID,
		})
	}

	c.JSON(http.StatusOK, gin.H{"sessions": resp})
}

func (h HandlerSet) ChangePassword(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req requests.ChangePassword
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidBody})
		return
	}

	res := h.auth.ChangePassword(c.Request.Context(), user.ID, req)
	if res.IsFailure() {
		respondFailure(c, res)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   res.Value().Message,
		"changedAt": res.Value().ChangedAt,
	})
}

func (h HandlerSet) UpdateAddress(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req requests.Address
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidBody})
		return
	}

	res := h.auth.UpdateAddress(c.Request.Context(), user.ID, req)
	if res.IsFailure() {
		respondFailure(c, res)
		return
	}

	c.JSON(http.StatusOK, gin.H{"address": toAddressResponse(res.Value())})
}
