package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type reportArchiveServiceMock struct {
	query dto.ExportQuery
}

func (m *reportArchiveServiceMock) Publish(_ context.Context, query dto.ExportQuery) (*dto.ExportLink, error) {
	m.query = query
	return &dto.ExportLink{URL: "/api/v1/feasibility/downloads/tok", Filename: "r.pdf", ExpiresAt: time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC)}, nil
}

func (m *reportArchiveServiceMock) Resolve(_ context.Context, token string) (*dto.ExportResult, error) {
	if token != "tok" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	return &dto.ExportResult{Filename: "r.pdf", ContentType: "application/pdf", Body: []byte("%PDF-1.3")}, nil
}

func TestReportArchiveHandlerPublish(t *testing.T) {
	svc := &reportArchiveServiceMock{}
	handler := NewReportArchiveHandler(svc)
	c, w := newTestContext(http.MethodPost, "/feasibility/report/links?termId=term-1&format=pdf", nil)

	handler.Publish(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "pdf", svc.query.Format)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "/api/v1/feasibility/downloads/tok", data["url"])
}

func TestReportArchiveHandlerDownload(t *testing.T) {
	handler := NewReportArchiveHandler(&reportArchiveServiceMock{})

	c, w := newTestContext(http.MethodGet, "/feasibility/downloads/tok", nil)
	c.Params = gin.Params{{Key: "token", Value: "tok"}}
	handler.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="r.pdf"`)

	c, w = newTestContext(http.MethodGet, "/feasibility/downloads/bad", nil)
	c.Params = gin.Params{{Key: "token", Value: "bad"}}
	handler.Download(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
