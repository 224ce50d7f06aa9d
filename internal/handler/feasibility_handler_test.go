package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/feasibility"
	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type feasibilityServiceMock struct {
	lastQuery dto.FeasibilityQuery
	lastCheck dto.CheckRequest
	cached    bool
	err       error
}

func (m *feasibilityServiceMock) Report(_ context.Context, query dto.FeasibilityQuery) (*dto.FeasibilityReport, error) {
	m.lastQuery = query
	if m.err != nil {
		return nil, m.err
	}
	warnings := []models.ValidationWarning{{ID: "quota-conflict-t-1", Level: models.LevelError, RelatedID: "t-1"}}
	return &dto.FeasibilityReport{TermID: query.TermID, Warnings: warnings, Summary: feasibility.Summarize(warnings), Cached: m.cached}, nil
}

func (m *feasibilityServiceMock) Preflight(_ context.Context, query dto.FeasibilityQuery) (*dto.PreflightResult, error) {
	m.lastQuery = query
	return &dto.PreflightResult{TermID: query.TermID, Blocked: true, Errors: []models.ValidationWarning{}, Warnings: []models.ValidationWarning{}}, nil
}

func (m *feasibilityServiceMock) Check(_ context.Context, req dto.CheckRequest) (*dto.CheckResponse, error) {
	m.lastCheck = req
	return &dto.CheckResponse{Warnings: []models.ValidationWarning{{ID: "all-clear", Level: models.LevelInfo}}}, nil
}

func (m *feasibilityServiceMock) SubstitutionBalance(_ context.Context, termID string) (*dto.SubstitutionBalanceResponse, error) {
	return &dto.SubstitutionBalanceResponse{TermID: termID, Balance: feasibility.SubstitutionBalance{Required: 5, Deficit: 5}}, nil
}

func (m *feasibilityServiceMock) Distribution(query dto.DistributionQuery) (*dto.DistributionResponse, error) {
	return &dto.DistributionResponse{PeriodsPerClass: query.PeriodsPerClass, WeekDays: query.WeekDays}, nil
}

func (m *feasibilityServiceMock) Export(_ context.Context, query dto.ExportQuery) (*dto.ExportResult, error) {
	if query.Format == "xlsx" {
		return nil, appErrors.ErrUnsupportedFormat
	}
	return &dto.ExportResult{Filename: "feasibility-term-1.csv", ContentType: "text/csv", Body: []byte("Level\n")}, nil
}

func newTestContext(method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestFeasibilityHandlerReport(t *testing.T) {
	svc := &feasibilityServiceMock{cached: true}
	handler := NewFeasibilityHandler(svc)
	c, w := newTestContext(http.MethodGet, "/feasibility/report?termId=term-1&relatedId=t-1", nil)

	handler.Report(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.FeasibilityQuery{TermID: "term-1", RelatedID: "t-1"}, svc.lastQuery)
	assert.Equal(t, "HIT", w.Header().Get(middleware.CacheHeader))
	envelope := decodeEnvelope(t, w)
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, true, data["summary"].(map[string]interface{})["blocked"])
	assert.Equal(t, true, envelope["meta"].(map[string]interface{})["cache_hit"])
}

func TestFeasibilityHandlerReportError(t *testing.T) {
	handler := NewFeasibilityHandler(&feasibilityServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "invalid feasibility query")})
	c, w := newTestContext(http.MethodGet, "/feasibility/report", nil)

	handler.Report(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, "VALIDATION_ERROR", envelope["error"].(map[string]interface{})["code"])
}

func TestFeasibilityHandlerPreflight(t *testing.T) {
	handler := NewFeasibilityHandler(&feasibilityServiceMock{})
	c, w := newTestContext(http.MethodGet, "/feasibility/preflight?termId=term-1", nil)

	handler.Preflight(c)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, data["blocked"])
	assert.Equal(t, []interface{}{}, data["errors"])
}

func TestFeasibilityHandlerCheck(t *testing.T) {
	svc := &feasibilityServiceMock{}
	handler := NewFeasibilityHandler(svc)
	body := []byte(`{"timing":{"activeDays":["monday"],"periodsPerDay":6},"subjects":[{"id":"math","periodsPerClass":3}],"classCount":2}`)
	c, w := newTestContext(http.MethodPost, "/feasibility/check", body)

	handler.Check(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, svc.lastCheck.ClassCount)
	assert.Equal(t, 6, svc.lastCheck.Timing.PeriodsPerDay)
	require.Len(t, svc.lastCheck.Subjects, 1)
	assert.Equal(t, 3, svc.lastCheck.Subjects[0].PeriodsPerClass)

	c, w = newTestContext(http.MethodPost, "/feasibility/check", []byte(`{`))
	handler.Check(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeasibilityHandlerSubstitutionBalance(t *testing.T) {
	handler := NewFeasibilityHandler(&feasibilityServiceMock{})

	c, w := newTestContext(http.MethodGet, "/feasibility/substitution-balance", nil)
	handler.SubstitutionBalance(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newTestContext(http.MethodGet, "/feasibility/substitution-balance?termId=term-1", nil)
	handler.SubstitutionBalance(c)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(5), data["balance"].(map[string]interface{})["deficit"])
}

func TestFeasibilityHandlerDistribution(t *testing.T) {
	handler := NewFeasibilityHandler(&feasibilityServiceMock{})

	c, w := newTestContext(http.MethodGet, "/feasibility/distribution?periodsPerClass=11&weekDays=5", nil)
	handler.Distribution(c)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(11), data["periodsPerClass"])

	c, w = newTestContext(http.MethodGet, "/feasibility/distribution?periodsPerClass=eleven&weekDays=5", nil)
	handler.Distribution(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeasibilityHandlerExport(t *testing.T) {
	handler := NewFeasibilityHandler(&feasibilityServiceMock{})

	c, w := newTestContext(http.MethodGet, "/feasibility/report/export?termId=term-1&format=csv", nil)
	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="feasibility-term-1.csv"`)
	assert.Equal(t, "Level\n", w.Body.String())

	c, w = newTestContext(http.MethodGet, "/feasibility/report/export?termId=term-1&format=xlsx", nil)
	handler.Export(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
