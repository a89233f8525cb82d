package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wimotos/backend/internal/interfaces/http/dto"
)

// BodyLimitConfig sizes request bodies. Multipart uploads get their own ceiling.
type BodyLimitConfig struct {
	MaxBytes       int64
	UploadMaxBytes int64
}

// BodyLimit returns a middleware that limits request body size
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return BodyLimitWithConfig(BodyLimitConfig{MaxBytes: maxBytes})
}

// BodyLimitWithConfig returns a body limit middleware that lets multipart/form-data
// requests through up to UploadMaxBytes
func BodyLimitWithConfig(cfg BodyLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := cfg.MaxBytes
		if cfg.UploadMaxBytes > 0 && strings.HasPrefix(c.ContentType(), "multipart/form-data") {
			limit = cfg.UploadMaxBytes
		}
		if limit <= 0 {
			c.Next()
			return
		}

		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size", c.GetString(RequestIDKey)))
			return
		}

		// Streaming bodies without a Content-Length are cut at the limit
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
