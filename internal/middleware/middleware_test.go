package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, requestIDFrom(c))
	})
	return r
}

func TestRequestIDGenerated(t *testing.T) {
	r := newTestEngine(RequestID())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	id := w.Header().Get(RequestIDHeader)
	assert.Len(t, id, 36)
	assert.Equal(t, id, w.Body.String())
}

func TestRequestIDPropagated(t *testing.T) {
	r := newTestEngine(RequestID())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "trace-abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "trace-abc", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "trace-abc", w.Body.String())
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(2)
	r := newTestEngine(RequestID(), limiter.Middleware())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiterDisabled(t *testing.T) {
	limiter := NewRateLimiter(0)
	for i := 0; i < 1000; i++ {
		assert.True(t, limiter.Allow())
	}
}

func TestLoggerMiddlewarePassesThrough(t *testing.T) {
	m := NewLoggerMiddleware("/health")
	r := newTestEngine(RequestID(), m.RequestLogger())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
