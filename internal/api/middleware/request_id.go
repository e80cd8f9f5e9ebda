package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/reportdeck/backend/internal/shared/id"
)

// Context and header keys for the request correlation ID.
const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)

// RequestID assigns every request a correlation ID. An incoming X-Request-ID
// is honored so upstream proxies can thread their own IDs through; otherwise
// a fresh ULID is minted. The ID is stored on the gin context and reflected
// in the response headers.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = id.NewRequestID().String()
		}

		c.Set(RequestIDKey, reqID)
		c.Header(RequestIDHeader, reqID)
		c.Next()
	}
}
