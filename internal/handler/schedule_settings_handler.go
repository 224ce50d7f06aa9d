package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type scheduleSettingsService interface {
	Get(ctx context.Context, termID string) (*dto.ScheduleSettingsResponse, error)
	UpsertSubjectConstraint(ctx context.Context, termID, subjectID string, req dto.UpsertSubjectConstraintRequest, actor *models.JWTClaims) (*models.SubjectConstraint, error)
	UpsertTeacherConstraint(ctx context.Context, termID, teacherID string, req dto.UpsertTeacherConstraintRequest, actor *models.JWTClaims) (*models.TeacherConstraint, error)
	UpdateSubstitution(ctx context.Context, termID string, req dto.UpdateSubstitutionRequest, actor *models.JWTClaims) (*models.SubstitutionConfig, error)
	ReplaceMeetings(ctx context.Context, termID string, req dto.ReplaceMeetingsRequest, actor *models.JWTClaims) ([]models.SpecializedMeeting, error)
}

// ScheduleSettingsHandler exposes the per-term constraint document.
type ScheduleSettingsHandler struct {
	service scheduleSettingsService
}

// NewScheduleSettingsHandler builds a new handler.
func NewScheduleSettingsHandler(service scheduleSettingsService) *ScheduleSettingsHandler {
	return &ScheduleSettingsHandler{service: service}
}

// Get godoc
// @Summary Get schedule settings of a term
// @Tags ScheduleSettings
// @Produce json
// @Param termId query string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /schedule-settings [get]
func (h *ScheduleSettingsHandler) Get(c *gin.Context) {
	termID, err := requireTermID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	settings, err := h.service.Get(c.Request.Context(), termID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings)
}

// UpsertSubject godoc
// @Summary Replace the period rules of a subject
// @Tags ScheduleSettings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param termId query string true "Term ID"
// @Param subjectId path string true "Subject ID"
// @Param payload body dto.UpsertSubjectConstraintRequest true "Subject constraint"
// @Success 200 {object} response.Envelope
// @Router /schedule-settings/subjects/{subjectId} [put]
func (h *ScheduleSettingsHandler) UpsertSubject(c *gin.Context) {
	termID, err := requireTermID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpsertSubjectConstraintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid subject constraint payload"))
		return
	}
	constraint, err := h.service.UpsertSubjectConstraint(c.Request.Context(), termID, c.Param("subjectId"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, constraint)
}

// UpsertTeacher godoc
// @Summary Replace the availability rules of a teacher
// @Tags ScheduleSettings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param termId query string true "Term ID"
// @Param teacherId path string true "Teacher ID"
// @Param payload body dto.UpsertTeacherConstraintRequest true "Teacher constraint"
// @Success 200 {object} response.Envelope
// @Router /schedule-settings/teachers/{teacherId} [put]
func (h *ScheduleSettingsHandler) UpsertTeacher(c *gin.Context) {
	termID, err := requireTermID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpsertTeacherConstraintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid teacher constraint payload"))
		return
	}
	constraint, err := h.service.UpsertTeacherConstraint(c.Request.Context(), termID, c.Param("teacherId"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, constraint)
}

// UpdateSubstitution godoc
// @Summary Set the substitution policy of a term
// @Tags ScheduleSettings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param termId query string true "Term ID"
// @Param payload body dto.UpdateSubstitutionRequest true "Substitution policy"
// @Success 200 {object} response.Envelope
// @Router /schedule-settings/substitution [put]
func (h *ScheduleSettingsHandler) UpdateSubstitution(c *gin.Context) {
	termID, err := requireTermID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateSubstitutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid substitution payload"))
		return
	}
	cfg, err := h.service.UpdateSubstitution(c.Request.Context(), termID, req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg)
}

// ReplaceMeetings godoc
// @Summary Replace the specialization meetings of a term
// @Tags ScheduleSettings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param termId query string true "Term ID"
// @Param payload body dto.ReplaceMeetingsRequest true "Meetings"
// @Success 200 {object} response.Envelope
// @Router /schedule-settings/meetings [put]
func (h *ScheduleSettingsHandler) ReplaceMeetings(c *gin.Context) {
	termID, err := requireTermID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ReplaceMeetingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid meetings payload"))
		return
	}
	meetings, err := h.service.ReplaceMeetings(c.Request.Context(), termID, req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, meetings, map[string]interface{}{"count": len(meetings)})
}
