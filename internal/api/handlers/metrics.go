package handlers

import (
	"net/http"

	"github.com/dhima/audit-store/internal/logging"
	"github.com/dhima/audit-store/internal/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsHandler exposes Prometheus metrics.
type MetricsHandler struct {
	logger  logging.Logger
	handler http.Handler
}

// NewMetricsHandler creates a handler serving the default Prometheus registry.
func NewMetricsHandler(logger logging.Logger) *MetricsHandler {
	metrics.Init()
	return &MetricsHandler{logger: logger, handler: metrics.Handler()}
}

// Metrics godoc
// @Summary Prometheus metrics
// @Description Returns audit store counters in the Prometheus text exposition format
// @Tags System
// @Produce plain
// @Success 200 {string} string "Prometheus metrics"
// @Router /metrics [get]
func (h *MetricsHandler) Metrics(c *gin.Context) {
	h.handler.ServeHTTP(c.Writer, c.Request)
}
