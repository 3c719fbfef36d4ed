package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/asq3-api/internal/asq3"
	"github.com/noah-isme/asq3-api/internal/service"
	"github.com/noah-isme/asq3-api/pkg/response"
)

type catalogSource interface {
	Catalog() (*asq3.Catalog, error)
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics   *service.MetricsService
	reference catalogSource
}

// NewMetricsHandler constructs a metrics handler. reference may be nil.
func NewMetricsHandler(metrics *service.MetricsService, reference catalogSource) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, reference: reference}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Summary godoc
// @Summary Aggregated process metrics
// @Tags Observability
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /metrics/summary [get]
func (h *MetricsHandler) Summary(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}

// Health reports readiness. The service is not ready until the reference catalog is loaded.
func (h *MetricsHandler) Health(c *gin.Context) {
	if h.reference != nil {
		catalog, err := h.reference.Catalog()
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "starting", "reference": "not_loaded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "reference_loaded_at": catalog.BuiltAt()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
