package handlers

import (
	"net/http"

	"example.com/backstage/services/picking/internal/metrics"
	"example.com/backstage/services/picking/internal/services"
	"example.com/backstage/services/picking/internal/tracing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// MetricsHandler handles metrics-related HTTP requests
type MetricsHandler struct {
	metrics     *metrics.Metrics
	projections *services.ProjectionService
	tracer      tracing.Tracer
}

// NewMetricsHandler creates a new metrics handler; projections may be nil
func NewMetricsHandler(m *metrics.Metrics, projections *services.ProjectionService, tracer tracing.Tracer) *MetricsHandler {
	return &MetricsHandler{
		metrics:     m,
		projections: projections,
		tracer:      tracer,
	}
}

// HandleGetMetrics returns all metrics
func (h *MetricsHandler) HandleGetMetrics(c *gin.Context) {
	txn := h.tracer.StartTransaction("get-metrics")
	defer h.tracer.EndTransaction(txn)

	if h.projections != nil {
		if err := h.projections.RefreshGauges(c.Request.Context()); err != nil {
			log.Warn().Err(err).Msg("Failed to refresh gauges")
			h.tracer.RecordError(txn, err)
		}
	}

	c.JSON(http.StatusOK, h.metrics.GetAllMetrics())
}

// HandleGetHealthCheck returns a simplified health status
func (h *MetricsHandler) HandleGetHealthCheck(c *gin.Context) {
	healthChecks := h.metrics.GetHealthChecks()

	healthy := true
	for _, ok := range healthChecks {
		if !ok {
			healthy = false
			break
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":  healthy,
		"details": healthChecks,
	})
}

// RegisterRoutes registers the handler's routes
func (h *MetricsHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/metrics", h.HandleGetMetrics)
	router.GET("/health", h.HandleGetHealthCheck)
}
