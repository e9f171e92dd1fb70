package logger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func findHTTPLog(t *testing.T, recorded *observer.ObservedLogs) observer.LoggedEntry {
	t.Helper()
	entries := recorded.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	return entries[0]
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(recorded *zap.Logger) *gin.Engine {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Set("request_id", "req-42")
			c.Next()
		})
		router.Use(GinMiddleware(recorded))
		router.GET("/products/:id", func(c *gin.Context) {
			c.Set("jwt_user_id", "user-7")
			assert.Equal(t, "req-42", GetRequestID(c.Request.Context()))
			GetGinLogger(c).Info("inside handler")
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})
		router.GET("/bad", func(c *gin.Context) {
			c.JSON(http.StatusBadRequest, gin.H{})
		})
		router.GET("/boom", func(c *gin.Context) {
			_ = c.Error(assert.AnError)
			c.JSON(http.StatusInternalServerError, gin.H{})
		})
		return router
	}

	t.Run("logs request with route and user", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		router := newRouter(zap.New(core))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/products/abc?fields=name", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		entry := findHTTPLog(t, recorded)
		assert.Equal(t, zapcore.InfoLevel, entry.Level)

		fields := entry.ContextMap()
		assert.Equal(t, "req-42", fields["request_id"])
		assert.Equal(t, "/products/:id", fields["route"])
		assert.Equal(t, "/products/abc", fields["path"])
		assert.Equal(t, "fields=name", fields["query"])
		assert.Equal(t, "user-7", fields["user_id"])
		assert.EqualValues(t, http.StatusOK, fields["status"])

		assert.Len(t, recorded.FilterMessage("inside handler").All(), 1)
	})

	t.Run("client errors log at warn", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		router := newRouter(zap.New(core))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bad", nil))

		assert.Equal(t, zapcore.WarnLevel, findHTTPLog(t, recorded).Level)
	})

	t.Run("server errors log at error with gin errors", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		router := newRouter(zap.New(core))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

		entry := findHTTPLog(t, recorded)
		assert.Equal(t, zapcore.ErrorLevel, entry.Level)
		assert.Contains(t, entry.ContextMap(), "errors")
	})
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.ErrorLevel)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-panic")
		c.Next()
	})
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code      string `json:"code"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "ERR_INTERNAL", body.Error.Code)
	assert.Equal(t, "req-panic", body.Error.RequestID)

	assert.Len(t, recorded.FilterMessage("Panic recovered").All(), 1)
}

func TestGetGinLogger_NotSet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.NotPanics(t, func() { GetGinLogger(c).Info("no-op") })
}
