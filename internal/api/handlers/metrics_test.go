package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dhima/audit-store/internal/logging"
	"github.com/dhima/audit-store/internal/metrics"
	"github.com/gin-gonic/gin"
)

func TestNewMetricsHandler_WhenCreated_ThenReturnsHandler(t *testing.T) {
	// Act
	handler := NewMetricsHandler(logging.NewNoOpLogger())

	// Assert
	if handler == nil {
		t.Fatal("expected handler to be non-nil")
	}
	if handler.handler == nil {
		t.Fatal("expected prometheus handler to be non-nil")
	}
}

func TestMetrics_WhenCalled_ThenReturnsPrometheusExposition(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)
	handler := NewMetricsHandler(logging.NewNoOpLogger())
	metrics.AuditsSavedTotal.WithLabelValues("TRACKER").Inc()

	router := gin.New()
	router.GET("/metrics", handler.Metrics)
	w := httptest.NewRecorder()

	// Act
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// Assert
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, name := range []string{
		"audit_store_audits_deleted_total",
		`audit_store_audits_saved_total{scope="TRACKER"}`,
		"go_goroutines",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("expected metrics output to contain %s", name)
		}
	}
}
