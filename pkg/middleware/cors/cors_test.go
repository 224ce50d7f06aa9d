package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(New(origins))
	router.GET("/feasibility/report", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestCORSAllowsListedOrigin(t *testing.T) {
	router := newRouter([]string{"https://admin.school.test/"})

	req := httptest.NewRequest(http.MethodGet, "/feasibility/report", nil)
	req.Header.Set("Origin", "https://admin.school.test")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "https://admin.school.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Feasibility-Cache")
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	router := newRouter([]string{"https://admin.school.test"})

	req := httptest.NewRequest(http.MethodGet, "/feasibility/report", nil)
	req.Header.Set("Origin", "https://evil.test")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	router := newRouter(nil)

	req := httptest.NewRequest(http.MethodOptions, "/feasibility/report", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
