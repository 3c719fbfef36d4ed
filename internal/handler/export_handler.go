package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/asq3-api/internal/models"
	"github.com/noah-isme/asq3-api/internal/service"
	"github.com/noah-isme/asq3-api/pkg/response"
)

type exportService interface {
	ScreeningResults(ctx context.Context, actor service.Actor, screeningID string, format models.ExportFormat) (*service.ExportFile, error)
}

// ExportHandler streams screening result documents.
type ExportHandler struct {
	service exportService
}

// NewExportHandler builds a new handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// ScreeningResults godoc
// @Summary Download screening results
// @Tags Screenings
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Screening ID"
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Success 200 {file} file
// @Failure 409 {object} response.Envelope
// @Router /screenings/{id}/export [get]
func (h *ExportHandler) ScreeningResults(c *gin.Context) {
	format := models.ExportFormat(strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "csv"))))
	file, err := h.service.ScreeningResults(c.Request.Context(), actorFromContext(c), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
