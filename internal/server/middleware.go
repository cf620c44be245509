package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	callerKey       = "caller"
)

// RequestLogger tags every request with an id and writes one access log line.
func (s *Server) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)

		c.Next()

		s.Logger.Info("request",
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("caller", c.GetString(callerKey)),
		)
	}
}

// RequireCaller rejects requests without the caller identity header set by
// the authentication proxy. An empty header name disables the check.
func (s *Server) RequireCaller() gin.HandlerFunc {
	header := s.Config.Auth.CallerHeader
	return func(c *gin.Context) {
		if header == "" {
			c.Next()
			return
		}
		caller := c.GetHeader(header)
		if caller == "" {
			abortWithError(c, http.StatusUnauthorized, "Missing caller identity", map[string]interface{}{"header": header})
			return
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}
