package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type schoolTimingService interface {
	Get(ctx context.Context) (*dto.SchoolTimingResponse, error)
	Update(ctx context.Context, req dto.UpdateSchoolTimingRequest, actor *models.JWTClaims) (*dto.SchoolTimingResponse, error)
}

// SchoolTimingHandler exposes the active school week.
type SchoolTimingHandler struct {
	service schoolTimingService
}

// NewSchoolTimingHandler builds a new handler.
func NewSchoolTimingHandler(service schoolTimingService) *SchoolTimingHandler {
	return &SchoolTimingHandler{service: service}
}

// Get godoc
// @Summary Get school timing
// @Tags SchoolTiming
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /school-timing [get]
func (h *SchoolTimingHandler) Get(c *gin.Context) {
	timing, err := h.service.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timing)
}

// Update godoc
// @Summary Update school timing
// @Tags SchoolTiming
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UpdateSchoolTimingRequest true "School week"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /school-timing [put]
func (h *SchoolTimingHandler) Update(c *gin.Context) {
	var req dto.UpdateSchoolTimingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid school timing payload"))
		return
	}
	timing, err := h.service.Update(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timing)
}
