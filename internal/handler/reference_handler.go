package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/asq3-api/internal/models"
	appErrors "github.com/noah-isme/asq3-api/pkg/errors"
	"github.com/noah-isme/asq3-api/pkg/response"
)

type referenceService interface {
	Domains() ([]models.Domain, error)
	Intervals() ([]models.AgeInterval, error)
	QuestionSheet(intervalID string) (*models.QuestionSheet, error)
	Recommendations(domainID, intervalID string) ([]string, error)
	Reload(ctx context.Context) (*models.ReferenceStats, error)
}

// ReferenceHandler serves the ASQ-3 reference catalog.
type ReferenceHandler struct {
	service referenceService
}

// NewReferenceHandler builds a new handler.
func NewReferenceHandler(service referenceService) *ReferenceHandler {
	return &ReferenceHandler{service: service}
}

// Domains godoc
// @Summary List developmental domains
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /asq3/domains [get]
func (h *ReferenceHandler) Domains(c *gin.Context) {
	items, err := h.service.Domains()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Intervals godoc
// @Summary List questionnaire age intervals
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /asq3/age-intervals [get]
func (h *ReferenceHandler) Intervals(c *gin.Context) {
	items, err := h.service.Intervals()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Questions godoc
// @Summary Get the question sheet of an age interval
// @Tags Reference
// @Produce json
// @Param id path string true "Age interval ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /asq3/age-intervals/{id}/questions [get]
func (h *ReferenceHandler) Questions(c *gin.Context) {
	sheet, err := h.service.QuestionSheet(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}

// Recommendations godoc
// @Summary Get recommendation texts for a domain and age interval
// @Tags Reference
// @Produce json
// @Param domain_id query string true "Domain ID"
// @Param age_interval_id query string true "Age interval ID"
// @Success 200 {object} response.Envelope
// @Router /asq3/recommendations [get]
func (h *ReferenceHandler) Recommendations(c *gin.Context) {
	domainID := strings.TrimSpace(c.Query("domain_id"))
	intervalID := strings.TrimSpace(c.Query("age_interval_id"))
	if domainID == "" || intervalID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "domain_id and age_interval_id are required"))
		return
	}
	texts, err := h.service.Recommendations(domainID, intervalID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, texts, nil)
}

// Reload godoc
// @Summary Reload reference data from the database
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /asq3/reference/reload [post]
func (h *ReferenceHandler) Reload(c *gin.Context) {
	stats, err := h.service.Reload(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
