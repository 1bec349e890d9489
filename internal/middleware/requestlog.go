package middleware

import (
	"context"
	"fmt"
	"strings"
	"time"

	"example.com/socialfeed/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type contextKey string

const RequestIDCtxKey = contextKey("request_id")

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

var logg = logger.New()

// RequestID reuses a valid incoming X-Request-ID or generates a new one, and
// stores it on the gin context and the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Set(string(RequestIDCtxKey), id)
		c.Header(RequestIDHeader, id)
		ctx := context.WithValue(c.Request.Context(), RequestIDCtxKey, id)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// AccessLog writes one structured line per request.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		id, _ := RequestIDFromContext(c.Request.Context())
		msg := fmt.Sprintf("%s %s status=%d duration=%s request_id=%s",
			c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start), id)
		if len(c.Errors) > 0 {
			logg.Error("http", msg, c.Errors.Last())
			return
		}
		logg.Info("http", msg)
	}
}

// Extracting request_id in handler
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(RequestIDCtxKey).(string)
	return id, ok
}
