package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"marketplace/api/internal/config"
	"marketplace/api/internal/handlers"
	"marketplace/api/internal/metrics"
)

func TestHTTPServerRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.AppConfig{
		Environment:      "test",
		HTTP:             config.HTTPConfig{Host: "127.0.0.1", Port: 18080},
		Storage:          config.StorageConfig{Driver: "memory"},
		AllowCORSOrigins: []string{"https://shop.example"},
	}
	handlerSet := handlers.NewHandlerSet(zerolog.Nop(), cfg, handlers.Dependencies{Metrics: metrics.New()})
	srv := NewHTTPServer(cfg, zerolog.Nop(), handlerSet)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	assert.Equal(t, "127.0.0.1:18080", srv.server.Addr)
}
