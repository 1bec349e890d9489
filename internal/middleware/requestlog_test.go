package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newTestRouter(seen *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), AccessLog())
	r.GET("/ping", func(c *gin.Context) {
		*seen, _ = RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestRequestID_Generated(t *testing.T) {
	var seen string
	r := newTestRouter(&seen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	header := w.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(header); err != nil {
		t.Fatalf("expected uuid header, got %q", header)
	}
	if seen != header {
		t.Fatalf("context id %q does not match header %q", seen, header)
	}
}

func TestRequestID_ReusesValidIncoming(t *testing.T) {
	var seen string
	r := newTestRouter(&seen)
	incoming := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, incoming)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if seen != incoming || w.Header().Get(RequestIDHeader) != incoming {
		t.Fatalf("expected incoming id to be reused, got %q", seen)
	}
}

func TestRequestID_ReplacesGarbage(t *testing.T) {
	var seen string
	r := newTestRouter(&seen)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "not a uuid")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if seen == "not a uuid" {
		t.Fatalf("garbage request id should be replaced")
	}
}
