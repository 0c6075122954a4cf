package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newBodyLimitEngine(maxBytes int64) *gin.Engine {
	engine := gin.New()
	engine.Use(BodyLimit(maxBytes))
	engine.POST("/proposals", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.String(http.StatusBadRequest, "body too large")
			return
		}
		c.String(http.StatusOK, "ok")
	})
	return engine
}

func TestBodyLimit_AllowsSmallBody(t *testing.T) {
	engine := newBodyLimitEngine(1024)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/proposals", strings.NewReader(`{"x":1}`))
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBodyLimit_RejectsDeclaredOversizedBody(t *testing.T) {
	engine := newBodyLimitEngine(64)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/proposals", strings.NewReader(strings.Repeat("x", 200)))
	req.ContentLength = 200
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_REQUEST_TOO_LARGE")
}

func TestBodyLimit_LimitsStreamingBody(t *testing.T) {
	engine := newBodyLimitEngine(32)

	// No declared length, the limit has to come from the wrapped reader
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/proposals", strings.NewReader(strings.Repeat("x", 100)))
	req.ContentLength = -1
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
