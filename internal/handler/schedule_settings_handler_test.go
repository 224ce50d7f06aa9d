package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type scheduleSettingsServiceMock struct {
	termID    string
	entityID  string
	actor     *models.JWTClaims
	teacher   dto.UpsertTeacherConstraintRequest
	subject   dto.UpsertSubjectConstraintRequest
	sub       dto.UpdateSubstitutionRequest
	meetings  dto.ReplaceMeetingsRequest
	mutateErr error
}

func (m *scheduleSettingsServiceMock) Get(_ context.Context, termID string) (*dto.ScheduleSettingsResponse, error) {
	m.termID = termID
	return &dto.ScheduleSettingsResponse{TermID: termID, Settings: models.ScheduleSettings{Substitution: models.DefaultSubstitutionConfig()}}, nil
}

func (m *scheduleSettingsServiceMock) UpsertSubjectConstraint(_ context.Context, termID, subjectID string, req dto.UpsertSubjectConstraintRequest, actor *models.JWTClaims) (*models.SubjectConstraint, error) {
	m.termID, m.entityID, m.subject, m.actor = termID, subjectID, req, actor
	if m.mutateErr != nil {
		return nil, m.mutateErr
	}
	return &models.SubjectConstraint{SubjectID: subjectID, ExcludedPeriods: req.ExcludedPeriods}, nil
}

func (m *scheduleSettingsServiceMock) UpsertTeacherConstraint(_ context.Context, termID, teacherID string, req dto.UpsertTeacherConstraintRequest, actor *models.JWTClaims) (*models.TeacherConstraint, error) {
	m.termID, m.entityID, m.teacher, m.actor = termID, teacherID, req, actor
	return &models.TeacherConstraint{TeacherID: teacherID, MaxConsecutive: 4}, nil
}

func (m *scheduleSettingsServiceMock) UpdateSubstitution(_ context.Context, termID string, req dto.UpdateSubstitutionRequest, actor *models.JWTClaims) (*models.SubstitutionConfig, error) {
	m.termID, m.sub, m.actor = termID, req, actor
	return &models.SubstitutionConfig{Method: models.SubstitutionMethod(req.Method)}, nil
}

func (m *scheduleSettingsServiceMock) ReplaceMeetings(_ context.Context, termID string, req dto.ReplaceMeetingsRequest, actor *models.JWTClaims) ([]models.SpecializedMeeting, error) {
	m.termID, m.meetings, m.actor = termID, req, actor
	out := make([]models.SpecializedMeeting, len(req.Meetings))
	return out, nil
}

var handlerAdmin = &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}

func TestScheduleSettingsHandlerGet(t *testing.T) {
	svc := &scheduleSettingsServiceMock{}
	handler := NewScheduleSettingsHandler(svc)

	c, w := newTestContext(http.MethodGet, "/schedule-settings", nil)
	handler.Get(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newTestContext(http.MethodGet, "/schedule-settings?termId=term-1", nil)
	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "term-1", svc.termID)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "auto", data["settings"].(map[string]interface{})["substitution"].(map[string]interface{})["method"])
}

func TestScheduleSettingsHandlerUpsertTeacher(t *testing.T) {
	svc := &scheduleSettingsServiceMock{}
	handler := NewScheduleSettingsHandler(svc)
	body := []byte(`{"maxConsecutive":0,"excludedSlots":{"sunday":[1,2]},"earlyExitMode":"auto","earlyExit":{"*":5},"maxFirstPeriods":2}`)
	c, w := newTestContext(http.MethodPut, "/schedule-settings/teachers/t-1?termId=term-1", body)
	c.Params = gin.Params{{Key: "teacherId", Value: "t-1"}}
	c.Set(middleware.ContextUserKey, handlerAdmin)

	handler.UpsertTeacher(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t-1", svc.entityID)
	assert.Equal(t, handlerAdmin, svc.actor)
	assert.Equal(t, []int{1, 2}, svc.teacher.ExcludedSlots["sunday"])
	assert.Equal(t, 5, svc.teacher.EarlyExit["*"])
	require.NotNil(t, svc.teacher.MaxFirstPeriods)
	assert.Equal(t, 2, *svc.teacher.MaxFirstPeriods)
}

func TestScheduleSettingsHandlerUpsertSubject(t *testing.T) {
	svc := &scheduleSettingsServiceMock{}
	handler := NewScheduleSettingsHandler(svc)

	c, w := newTestContext(http.MethodPut, "/schedule-settings/subjects/math?termId=term-1", []byte(`{"excludedPeriods":[7],"enableDoublePeriods":true}`))
	c.Params = gin.Params{{Key: "subjectId", Value: "math"}}
	c.Set(middleware.ContextUserKey, handlerAdmin)
	handler.UpsertSubject(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "math", svc.entityID)
	assert.True(t, svc.subject.EnableDoublePeriods)

	svc.mutateErr = appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	c, w = newTestContext(http.MethodPut, "/schedule-settings/subjects/ghost?termId=term-1", []byte(`{}`))
	c.Params = gin.Params{{Key: "subjectId", Value: "ghost"}}
	handler.UpsertSubject(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	c, w = newTestContext(http.MethodPut, "/schedule-settings/subjects/math?termId=term-1", []byte(`{"excludedPeriods":"7"}`))
	handler.UpsertSubject(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleSettingsHandlerSubstitutionAndMeetings(t *testing.T) {
	svc := &scheduleSettingsServiceMock{}
	handler := NewScheduleSettingsHandler(svc)

	c, w := newTestContext(http.MethodPut, "/schedule-settings/substitution?termId=term-1", []byte(`{"method":"fixed","maxTotalQuota":26,"fixedPerPeriod":5}`))
	handler.UpdateSubstitution(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, svc.sub.FixedPerPeriod)

	c, w = newTestContext(http.MethodPut, "/schedule-settings/meetings?termId=term-1",
		[]byte(`{"meetings":[{"specializationId":"science","day":"monday","period":7},{"specializationId":"arts","day":"tuesday","period":6}]}`))
	handler.ReplaceMeetings(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, svc.meetings.Meetings, 2)
	assert.Equal(t, float64(2), decodeEnvelope(t, w)["meta"].(map[string]interface{})["count"])

	c, w = newTestContext(http.MethodPut, "/schedule-settings/meetings", []byte(`{}`))
	handler.ReplaceMeetings(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
