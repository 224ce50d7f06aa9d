package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type feasibilityService interface {
	Report(ctx context.Context, query dto.FeasibilityQuery) (*dto.FeasibilityReport, error)
	Preflight(ctx context.Context, query dto.FeasibilityQuery) (*dto.PreflightResult, error)
	Check(ctx context.Context, req dto.CheckRequest) (*dto.CheckResponse, error)
	SubstitutionBalance(ctx context.Context, termID string) (*dto.SubstitutionBalanceResponse, error)
	Distribution(query dto.DistributionQuery) (*dto.DistributionResponse, error)
	Export(ctx context.Context, query dto.ExportQuery) (*dto.ExportResult, error)
}

// FeasibilityHandler exposes constraint validation endpoints.
type FeasibilityHandler struct {
	service feasibilityService
}

// NewFeasibilityHandler builds a new handler.
func NewFeasibilityHandler(service feasibilityService) *FeasibilityHandler {
	return &FeasibilityHandler{service: service}
}

// Report godoc
// @Summary Validate the stored constraints of a term
// @Tags Feasibility
// @Produce json
// @Param termId query string true "Term ID"
// @Param phase query string false "School phase"
// @Param relatedId query string false "Only warnings about this subject or teacher"
// @Success 200 {object} response.Envelope
// @Router /feasibility/report [get]
func (h *FeasibilityHandler) Report(c *gin.Context) {
	var query dto.FeasibilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindError(err, "invalid feasibility query"))
		return
	}
	report, err := h.service.Report(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, report.Cached)
	response.JSON(c, http.StatusOK, report, middleware.ExtractMeta(c))
}

// Preflight godoc
// @Summary Decide whether timetable generation may start
// @Tags Feasibility
// @Produce json
// @Param termId query string true "Term ID"
// @Param phase query string false "School phase"
// @Success 200 {object} response.Envelope
// @Router /feasibility/preflight [get]
func (h *FeasibilityHandler) Preflight(c *gin.Context) {
	var query dto.FeasibilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindError(err, "invalid feasibility query"))
		return
	}
	result, err := h.service.Preflight(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Check godoc
// @Summary Validate an ad-hoc snapshot
// @Tags Feasibility
// @Accept json
// @Produce json
// @Param payload body dto.CheckRequest true "Snapshot"
// @Success 200 {object} response.Envelope
// @Router /feasibility/check [post]
func (h *FeasibilityHandler) Check(c *gin.Context) {
	var req dto.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid feasibility snapshot"))
		return
	}
	result, err := h.service.Check(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// SubstitutionBalance godoc
// @Summary Compare substitution demand with spare teacher capacity
// @Tags Feasibility
// @Produce json
// @Param termId query string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /feasibility/substitution-balance [get]
func (h *FeasibilityHandler) SubstitutionBalance(c *gin.Context) {
	termID, err := requireTermID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	balance, err := h.service.SubstitutionBalance(c.Request.Context(), termID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, balance)
}

// Distribution godoc
// @Summary Describe how a weekly load spreads over the week
// @Tags Feasibility
// @Produce json
// @Param periodsPerClass query int true "Weekly periods"
// @Param weekDays query int true "Active days"
// @Success 200 {object} response.Envelope
// @Router /feasibility/distribution [get]
func (h *FeasibilityHandler) Distribution(c *gin.Context) {
	var query dto.DistributionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindError(err, "invalid distribution query"))
		return
	}
	result, err := h.service.Distribution(query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Export godoc
// @Summary Download the feasibility report
// @Tags Feasibility
// @Produce text/csv
// @Produce application/pdf
// @Param termId query string true "Term ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /feasibility/report/export [get]
func (h *FeasibilityHandler) Export(c *gin.Context) {
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindError(err, "invalid export query"))
		return
	}
	file, err := h.service.Export(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
