package middleware

import (
	"github.com/dairyline/distributor/internal/common/cnst"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID keeps the caller's X-Request-ID or mints one, and echoes it back
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(cnst.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Request.Header.Set(cnst.HeaderRequestID, requestID)
		c.Writer.Header().Set(cnst.HeaderRequestID, requestID)
		c.Set(cnst.CtxKeyRequestID, requestID)
		c.Next()
	}
}
