package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/asq3-api/internal/dto"
	"github.com/noah-isme/asq3-api/internal/models"
	"github.com/noah-isme/asq3-api/internal/service"
	appErrors "github.com/noah-isme/asq3-api/pkg/errors"
	"github.com/noah-isme/asq3-api/pkg/response"
)

type interventionService interface {
	List(ctx context.Context, actor service.Actor, screeningID string) ([]models.Intervention, error)
	Create(ctx context.Context, actor service.Actor, screeningID string, req dto.CreateInterventionRequest) (*models.Intervention, error)
	Update(ctx context.Context, actor service.Actor, screeningID, id string, req dto.UpdateInterventionRequest) (*models.Intervention, error)
	Complete(ctx context.Context, actor service.Actor, screeningID, id string) (*models.Intervention, error)
	Delete(ctx context.Context, actor service.Actor, screeningID, id string) error
}

// InterventionHandler exposes follow-up actions of completed screenings.
type InterventionHandler struct {
	service interventionService
}

// NewInterventionHandler builds a new handler.
func NewInterventionHandler(service interventionService) *InterventionHandler {
	return &InterventionHandler{service: service}
}

// List godoc
// @Summary List interventions of a screening
// @Tags Interventions
// @Produce json
// @Param id path string true "Screening ID"
// @Success 200 {object} response.Envelope
// @Router /screenings/{id}/interventions [get]
func (h *InterventionHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Add an intervention
// @Tags Interventions
// @Accept json
// @Produce json
// @Param id path string true "Screening ID"
// @Param payload body dto.CreateInterventionRequest true "Intervention"
// @Success 201 {object} response.Envelope
// @Router /screenings/{id}/interventions [post]
func (h *InterventionHandler) Create(c *gin.Context) {
	var req dto.CreateInterventionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid intervention payload"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update an intervention
// @Tags Interventions
// @Accept json
// @Produce json
// @Param id path string true "Screening ID"
// @Param interventionId path string true "Intervention ID"
// @Param payload body dto.UpdateInterventionRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /screenings/{id}/interventions/{interventionId} [patch]
func (h *InterventionHandler) Update(c *gin.Context) {
	var req dto.UpdateInterventionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid intervention payload"))
		return
	}
	item, err := h.service.Update(c.Request.Context(), actorFromContext(c), c.Param("id"), c.Param("interventionId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Complete godoc
// @Summary Mark an intervention as completed
// @Tags Interventions
// @Produce json
// @Param id path string true "Screening ID"
// @Param interventionId path string true "Intervention ID"
// @Success 200 {object} response.Envelope
// @Router /screenings/{id}/interventions/{interventionId}/complete [post]
func (h *InterventionHandler) Complete(c *gin.Context) {
	item, err := h.service.Complete(c.Request.Context(), actorFromContext(c), c.Param("id"), c.Param("interventionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete an intervention
// @Tags Interventions
// @Param id path string true "Screening ID"
// @Param interventionId path string true "Intervention ID"
// @Success 204
// @Router /screenings/{id}/interventions/{interventionId} [delete]
func (h *InterventionHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), actorFromContext(c), c.Param("id"), c.Param("interventionId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
