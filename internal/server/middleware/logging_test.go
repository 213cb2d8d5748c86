package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"leafscan/internal/logger"
)

func TestWithRequestLog(t *testing.T) {
	gin.SetMode(gin.TestMode)

	buf := &bytes.Buffer{}
	log := logger.New(buf, logger.DEBUG)

	w := httptest.NewRecorder()
	c, r := gin.CreateTestContext(w)
	r.Use(WithRequestLog(log))
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	c.Request = req
	r.ServeHTTP(w, req)

	line := buf.String()
	if !strings.Contains(line, "[INFO]") || !strings.Contains(line, "path=/ok") || !strings.Contains(line, "status=200") {
		t.Fatalf("unexpected log line: %s", line)
	}

	buf.Reset()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bad", nil))
	if !strings.Contains(buf.String(), "[WARNING]") || !strings.Contains(buf.String(), "status=400") {
		t.Fatalf("expected warning line, got: %s", buf.String())
	}
}

func TestWithRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	buf := &bytes.Buffer{}
	w := httptest.NewRecorder()
	c, r := gin.CreateTestContext(w)
	r.Use(WithRecovery(logger.New(buf, logger.DEBUG)))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	c.Request = req
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", w.Code)
	}
	if !strings.Contains(buf.String(), "panic recovered") || !strings.Contains(buf.String(), "panic=boom") {
		t.Fatalf("unexpected log: %s", buf.String())
	}
}
