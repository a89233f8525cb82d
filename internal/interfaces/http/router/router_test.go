package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	var seen []string
	r := NewRouter(engine, WithAPIVersion("v2"), WithAPIMiddleware(func(c *gin.Context) {
		seen = append(seen, "api")
		c.Next()
	}))

	group := NewDomainGroup("/sales").Use(func(c *gin.Context) {
		seen = append(seen, "group")
		c.Next()
	})
	group.GET("/:id", func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) }).
		PATCH("/:id/status", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/sales/abc", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", w.Body.String())
	assert.Equal(t, []string{"api", "group"}, seen)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/v2/sales/abc/status", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v2/sales/abc", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, w.Body.String(), "METHOD_NOT_ALLOWED")
}

func TestRouterSetup_UnregisteredRoute(t *testing.T) {
	engine := gin.New()
	NewRouter(engine).Register(NewDomainGroup("/clients").
		GET("", func(c *gin.Context) { c.Status(http.StatusOK) })).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/finance", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"NOT_FOUND"`)
}
