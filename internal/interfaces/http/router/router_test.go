package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func echoMethod(c *gin.Context) {
	c.String(http.StatusOK, c.Request.Method+" "+c.FullPath())
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRouter_BasePath(t *testing.T) {
	assert.Equal(t, "/api/v1", NewRouter(gin.New()).BasePath())
	assert.Equal(t, "/api/v2", NewRouter(gin.New(), WithAPIVersion("v2")).BasePath())
}

func TestRouter_MountsEveryMethodUnderVersionPrefix(t *testing.T) {
	engine := gin.New()
	shelf := NewDomainGroup("/shelves").
		GET("", echoMethod).
		POST("", echoMethod).
		PUT("/:id", echoMethod).
		PATCH("/:id", echoMethod).
		DELETE("/:id", echoMethod)
	NewRouter(engine, WithAPIVersion("v3")).Register(shelf).Setup()

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodGet, "/api/v3/shelves", "GET /api/v3/shelves"},
		{http.MethodPost, "/api/v3/shelves", "POST /api/v3/shelves"},
		{http.MethodPut, "/api/v3/shelves/7", "PUT /api/v3/shelves/:id"},
		{http.MethodPatch, "/api/v3/shelves/7", "PATCH /api/v3/shelves/:id"},
		{http.MethodDelete, "/api/v3/shelves/7", "DELETE /api/v3/shelves/:id"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			rec := serve(engine, tt.method, tt.path)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}

	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/shelves").Code)
}

func TestDomainGroup_MiddlewareOrder(t *testing.T) {
	var calls []string
	step := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) {
			calls = append(calls, name)
			c.Next()
		}
	}

	engine := gin.New()
	group := NewDomainGroup("/carts").Use(step("group")).
		GET("", step("route"), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	NewRouter(engine).Register(group).Setup()

	rec := serve(engine, http.MethodGet, "/api/v1/carts")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"group", "route"}, calls)
}

func TestDomainGroup_MiddlewareStaysInsideGroup(t *testing.T) {
	engine := gin.New()
	locked := NewDomainGroup("/private").
		Use(func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }).
		GET("", echoMethod)
	open := NewDomainGroup("/public").GET("", echoMethod)
	NewRouter(engine).Register(locked).Register(open).Setup()

	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/api/v1/private").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/public").Code)
}
