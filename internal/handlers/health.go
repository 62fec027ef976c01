package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	componentOK       = "ok"
	componentError    = "error"
	componentDisabled = "disabled"
)

type healthResponse struct {
	Status      string `json:"status"`
	Storage     string `json:"storage"`
	Database    string `json:"database"`
	Cache       string `json:"cache"`
	Environment string `json:"environment"`
}

// Health reports 503 only when a configured dependency fails its ping.
func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := componentDisabled
	if h.db != nil {
		dbStatus = componentOK
		if err := h.db.Ping(ctx); err != nil {
			dbStatus = componentError
			h.log.Error().Err(err).Msg("database ping failed")
		}
	}

	cacheStatus := componentDisabled
	if h.cache != nil {
		cacheStatus = componentOK
		if err := h.cache.Ping(ctx).Err(); err != nil {
			cacheStatus = componentError
			h.log.Error().Err(err).Msg("redis ping failed")
		}
	}

	status, code := componentOK, http.StatusOK
	if dbStatus == componentError || cacheStatus == componentError {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	c.JSON(code, healthResponse{
		Status:      status,
		Storage:     h.cfg.Storage.Driver,
		Database:    dbStatus,
		Cache:       cacheStatus,
		Environment: h.cfg.Environment,
	})
}
