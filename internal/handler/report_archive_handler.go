package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type reportArchiveService interface {
	Publish(ctx context.Context, query dto.ExportQuery) (*dto.ExportLink, error)
	Resolve(ctx context.Context, token string) (*dto.ExportResult, error)
}

// ReportArchiveHandler hands out signed download links for rendered reports.
type ReportArchiveHandler struct {
	service reportArchiveService
}

// NewReportArchiveHandler builds a new handler.
func NewReportArchiveHandler(service reportArchiveService) *ReportArchiveHandler {
	return &ReportArchiveHandler{service: service}
}

// Publish godoc
// @Summary Archive the feasibility report and return a download link
// @Tags Feasibility
// @Produce json
// @Security BearerAuth
// @Param termId query string true "Term ID"
// @Param phase query string false "School phase"
// @Param format query string false "csv or pdf"
// @Success 201 {object} response.Envelope
// @Router /feasibility/report/links [post]
func (h *ReportArchiveHandler) Publish(c *gin.Context) {
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindError(err, "invalid export query"))
		return
	}
	link, err := h.service.Publish(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// Download godoc
// @Summary Download an archived feasibility report
// @Tags Feasibility
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /feasibility/downloads/{token} [get]
func (h *ReportArchiveHandler) Download(c *gin.Context) {
	file, err := h.service.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
