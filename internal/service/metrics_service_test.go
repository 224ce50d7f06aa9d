package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func TestMetricsServiceObserveValidation(t *testing.T) {
	metrics := NewMetricsService()

	metrics.ObserveValidation("report", 2*time.Millisecond, []models.ValidationWarning{
		{ID: "quota-conflict-t-1", Level: models.LevelError},
		{ID: "subj-spread-math", Level: models.LevelWarning},
		{ID: "general-overload", Level: models.LevelWarning},
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.warningsTotal.WithLabelValues("error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.warningsTotal.WithLabelValues("warning")))

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.ValidationsTotal)
	assert.InDelta(t, 2.0, snapshot.AverageValidationMs, 0.001)
}

func TestMetricsServiceCacheRatio(t *testing.T) {
	metrics := NewMetricsService()
	metrics.RecordCacheOperation(true, time.Millisecond)
	metrics.RecordCacheOperation(false, time.Millisecond)
	metrics.RecordCacheOperation(true, time.Millisecond)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(2), snapshot.CacheHits)
	assert.InDelta(t, 2.0/3.0, snapshot.CacheHitRatio, 1e-9)
}

func TestMetricsServiceHandlerExposesFeasibilitySeries(t *testing.T) {
	metrics := NewMetricsService()
	metrics.ObserveValidation("check", time.Millisecond, nil)
	metrics.RecordRevalidation(false)

	w := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "feasibility_validation_duration_seconds")
	assert.Contains(t, w.Body.String(), `feasibility_revalidations_total{outcome="failure"} 1`)
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var metrics *MetricsService
	metrics.ObserveValidation("report", time.Millisecond, nil)
	metrics.RecordCacheOperation(true, time.Millisecond)
	assert.Equal(t, models.SystemMetrics{}, metrics.Snapshot())

	w := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
