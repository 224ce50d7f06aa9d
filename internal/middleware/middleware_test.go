package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type staticValidator struct {
	claims *models.JWTClaims
}

func (v staticValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" || v.claims == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return v.claims, nil
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	router.PUT("/items/:teacherId", handlers...)
	return router
}

func serve(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, "/items/t-1?termId=term-1", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAndRequireRoles(t *testing.T) {
	admin := staticValidator{claims: &models.JWTClaims{UserID: "u-1", Role: models.RoleAdmin}}
	teacher := staticValidator{claims: &models.JWTClaims{UserID: "u-2", Role: models.RoleTeacher}}
	roles := RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)

	assert.Equal(t, http.StatusUnauthorized, serve(newRouter(JWT(admin), roles), "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(newRouter(JWT(admin), roles), "Token good").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(newRouter(JWT(admin), roles), "Bearer bad").Code)
	assert.Equal(t, http.StatusForbidden, serve(newRouter(JWT(teacher), roles), "Bearer good").Code)
	assert.Equal(t, http.StatusNoContent, serve(newRouter(JWT(admin), roles), "Bearer good").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(newRouter(roles), "Bearer good").Code)
}

func TestJWTWithAuthService(t *testing.T) {
	auth := service.NewAuthService(nil, service.AuthConfig{AccessTokenSecret: "secret"})
	token, _, err := auth.IssueToken("u-1", models.RoleSuperAdmin)
	require.NoError(t, err)

	w := serve(newRouter(JWT(auth), RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)), "Bearer "+token)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestOptionalJWT(t *testing.T) {
	var seen *models.JWTClaims
	capture := func(c *gin.Context) {
		seen = CurrentUser(c)
		c.Next()
	}
	admin := staticValidator{claims: &models.JWTClaims{UserID: "u-1", Role: models.RoleAdmin}}

	assert.Equal(t, http.StatusNoContent, serve(newRouter(OptionalJWT(admin), capture), "Bearer bad").Code)
	assert.Nil(t, seen)

	serve(newRouter(OptionalJWT(admin), capture), "Bearer good")
	require.NotNil(t, seen)
	assert.Equal(t, "u-1", seen.UserID)
}

func TestAudit(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	admin := staticValidator{claims: &models.JWTClaims{UserID: "u-1", Role: models.RoleAdmin}}

	serve(newRouter(JWT(admin), Audit(zap.New(core), "update", "teacher_constraint")), "Bearer good")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "update", fields["action"])
	assert.Equal(t, "u-1", fields["user_id"])
	assert.Equal(t, "term-1", fields["term_id"])
	assert.Equal(t, "t-1", fields["teacherId"])
}

func TestSetCacheHitAndMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(WithResponseMeta(), Metrics(metrics))
	router.GET("/report", func(c *gin.Context) {
		SetCacheHit(c, true)
		c.JSON(http.StatusOK, ExtractMeta(c))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/report", nil))

	assert.Equal(t, "HIT", w.Header().Get(CacheHeader))
	assert.JSONEq(t, `{"cache_hit":true}`, w.Body.String())
	assert.Equal(t, uint64(1), metrics.Snapshot().RequestsTotal)
}

func TestMetricsLabelsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics, "/metrics"))
	router.GET("/downloads/:token", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, target := range []string{"/downloads/a", "/downloads/b", "/metrics", "/nope/1", "/nope/2"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	assert.Equal(t, uint64(4), metrics.Snapshot().RequestsTotal)
	count, err := testutil.GatherAndCount(metrics.Registry(), "http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series for the route template and one for unmatched requests")
}
