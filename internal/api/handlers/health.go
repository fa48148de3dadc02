package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/dhima/audit-store/internal/api/response"
	"github.com/dhima/audit-store/internal/logging"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether a dependency is reachable. *sqlx.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	logger logging.Logger
	db     Pinger
}

// NewHealthHandler creates a new health check handler. db may be nil.
func NewHealthHandler(logger logging.Logger, db Pinger) *HealthHandler {
	return &HealthHandler{logger: logger, db: db}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Service  string `json:"service" example:"audit-store"`
	Version  string `json:"version" example:"1.0.0"`
	Database string `json:"database,omitempty" example:"up"`
} // @name HealthResponse

// Health godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API service and its database
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:  "ok",
		Service: "audit-store",
		Version: "1.0.0",
	}
	if h.db == nil {
		response.OK(c, resp)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn("database health check failed", zap.Error(err))
		resp.Status, resp.Database = "degraded", "down"
		response.Success(c, http.StatusServiceUnavailable, resp, "")
		return
	}

	resp.Database = "up"
	response.OK(c, resp)
}
