package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/asq3-api/internal/dto"
	"github.com/noah-isme/asq3-api/internal/middleware"
	"github.com/noah-isme/asq3-api/internal/models"
	"github.com/noah-isme/asq3-api/internal/service"
	appErrors "github.com/noah-isme/asq3-api/pkg/errors"
	"github.com/noah-isme/asq3-api/pkg/response"
)

type screeningService interface {
	Start(ctx context.Context, actor service.Actor, childID string, req dto.StartScreeningRequest) (*models.ScreeningDetail, error)
	ListByChild(ctx context.Context, actor service.Actor, childID string, query dto.ListScreeningsQuery) ([]models.ScreeningSummary, *models.Pagination, error)
	Get(ctx context.Context, actor service.Actor, id string) (*models.ScreeningDetail, error)
	UpdateNotes(ctx context.Context, actor service.Actor, id string, req dto.UpdateNotesRequest) (*models.Screening, error)
	SubmitAnswers(ctx context.Context, actor service.Actor, id string, req dto.SubmitAnswersRequest) (*dto.SubmitAnswersResponse, error)
	Complete(ctx context.Context, actor service.Actor, id string) (*models.ScreeningResults, error)
	Cancel(ctx context.Context, actor service.Actor, id string) (*models.Screening, error)
	Progress(ctx context.Context, actor service.Actor, id string) (*models.ScreeningProgress, error)
	Results(ctx context.Context, actor service.Actor, id string) (*models.ScreeningResults, bool, error)
	Recommendations(ctx context.Context, actor service.Actor, id string) (*dto.ScreeningRecommendations, error)
}

// ScreeningHandler exposes the screening workflow endpoints.
type ScreeningHandler struct {
	service screeningService
}

// NewScreeningHandler builds a new handler.
func NewScreeningHandler(service screeningService) *ScreeningHandler {
	return &ScreeningHandler{service: service}
}

// Start godoc
// @Summary Start a screening for a child
// @Tags Screenings
// @Accept json
// @Produce json
// @Param childId path string true "Child ID"
// @Param payload body dto.StartScreeningRequest false "Screening date and notes"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /children/{childId}/screenings [post]
func (h *ScreeningHandler) Start(c *gin.Context) {
	var req dto.StartScreeningRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid screening payload"))
			return
		}
	}
	detail, err := h.service.Start(c.Request.Context(), actorFromContext(c), c.Param("childId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// ListByChild godoc
// @Summary List a child's screenings
// @Tags Screenings
// @Produce json
// @Param childId path string true "Child ID"
// @Param status query string false "in_progress, completed or cancelled"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /children/{childId}/screenings [get]
func (h *ScreeningHandler) ListByChild(c *gin.Context) {
	var query dto.ListScreeningsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	items, pagination, err := h.service.ListByChild(c.Request.Context(), actorFromContext(c), c.Param("childId"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get a screening with answers and results
// @Tags Screenings
// @Produce json
// @Param id path string true "Screening ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /screenings/{id} [get]
func (h *ScreeningHandler) Get(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// UpdateNotes godoc
// @Summary Update screening notes
// @Tags Screenings
// @Accept json
// @Produce json
// @Param id path string true "Screening ID"
// @Param payload body dto.UpdateNotesRequest true "Notes"
// @Success 200 {object} response.Envelope
// @Router /screenings/{id} [patch]
func (h *ScreeningHandler) UpdateNotes(c *gin.Context) {
	var req dto.UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid notes payload"))
		return
	}
	screening, err := h.service.UpdateNotes(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, screening, nil)
}

// SubmitAnswers godoc
// @Summary Save a batch of answers
// @Tags Screenings
// @Accept json
// @Produce json
// @Param id path string true "Screening ID"
// @Param payload body dto.SubmitAnswersRequest true "Answers"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /screenings/{id}/answers [post]
func (h *ScreeningHandler) SubmitAnswers(c *gin.Context) {
	var req dto.SubmitAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid answers payload"))
		return
	}
	result, err := h.service.SubmitAnswers(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Complete godoc
// @Summary Score and complete a screening
// @Tags Screenings
// @Produce json
// @Param id path string true "Screening ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /screenings/{id}/complete [post]
func (h *ScreeningHandler) Complete(c *gin.Context) {
	results, err := h.service.Complete(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// Cancel godoc
// @Summary Cancel an in-progress screening
// @Tags Screenings
// @Produce json
// @Param id path string true "Screening ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /screenings/{id}/cancel [post]
func (h *ScreeningHandler) Cancel(c *gin.Context) {
	screening, err := h.service.Cancel(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, screening, nil)
}

// Progress godoc
// @Summary Get answering progress
// @Tags Screenings
// @Produce json
// @Param id path string true "Screening ID"
// @Success 200 {object} response.Envelope
// @Router /screenings/{id}/progress [get]
func (h *ScreeningHandler) Progress(c *gin.Context) {
	progress, err := h.service.Progress(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress, nil)
}

// Results godoc
// @Summary Get domain results of a completed screening
// @Tags Screenings
// @Produce json
// @Param id path string true "Screening ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /screenings/{id}/results [get]
func (h *ScreeningHandler) Results(c *gin.Context) {
	results, cacheHit, err := h.service.Results(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, results, nil, middleware.ExtractMeta(c))
}

// Recommendations godoc
// @Summary Get stimulation recommendations for flagged domains
// @Tags Screenings
// @Produce json
// @Param id path string true "Screening ID"
// @Success 200 {object} response.Envelope
// @Router /screenings/{id}/recommendations [get]
func (h *ScreeningHandler) Recommendations(c *gin.Context) {
	recs, err := h.service.Recommendations(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, recs, nil)
}
