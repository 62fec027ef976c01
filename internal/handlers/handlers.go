package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"marketplace/api/internal/config"
	"marketplace/api/internal/metrics"
	"marketplace/api/internal/middleware"
	"marketplace/api/internal/models"
	"marketplace/api/internal/result"
	"marketplace/api/internal/service"
)

const msgInvalidBody = "Invalid request body."

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Dependencies struct {
	Auth       *service.AuthService
	Categories *service.CategoryService
	Companies  *service.CompanyService
	Metrics    *metrics.Metrics
	// DB and Cache are nil when the process runs without them.
	DB    Pinger
	Cache *redis.Client
}

type HandlerSet struct {
	log        zerolog.Logger
	cfg        *config.AppConfig
	auth       *service.AuthService
	categories *service.CategoryService
	companies  *service.CompanyService
	metrics    *metrics.Metrics
	db         Pinger
	cache      *redis.Client
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, deps Dependencies) HandlerSet {
	return HandlerSet{
		log:        log,
		cfg:        cfg,
		auth:       deps.Auth,
		categories: deps.Categories,
		companies:  deps.Companies,
		metrics:    deps.Metrics,
		db:         deps.DB,
		cache:      deps.Cache,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	login := router.Group("/Login")
	login.POST("/login", h.Login)
	login.POST("/refresh", h.Refresh)
	login.POST("/logout", h.Logout)
	login.POST("/forgot-password", h.ForgotPassword)
	login.POST("/reset-password", h.ResetPassword)

	user := router.Group("/User")
	user.PUT("/ValidateEmail/:id", h.ValidateEmail)
	user.POST("/ValidateEmail/:id", h.ValidateEmail)

	authenticated := user.Group("")
	authenticated.Use(middleware.Auth(h.auth))
	authenticated.GET("/me", h.Me)
	authenticated.GET("/sessions", h.ListSessions)
	authenticated.POST("/ChangePassword", h.ChangePassword)
	authenticated.PUT("/Address", h.UpdateAddress)

	router.GET("/Category", h.ListCategories)

	company := router.Group("/Company")
	company.Use(
		middleware.Auth(h.auth),
		middleware.RequireRoles(models.UserRoleSeller, models.UserRoleAdmin),
	)
	company.GET("/GetMyCompany", h.GetMyCompany)
}

// MetricsHandler serves the prometheus registry.
func (h HandlerSet) MetricsHandler() http.Handler {
	return h.metrics.Handler()
}

func respondFailure[T any](c *gin.Context, r result.Result[T]) {
	c.JSON(r.HTTPStatus(), gin.H{"message": r.Message()})
}

func currentUser(c *gin.Context) (models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": service.MsgInvalidCredentials})
	}
	return user, ok
}
