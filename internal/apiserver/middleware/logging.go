package middleware

import (
	"time"

	"github.com/dairyline/distributor/internal/common/cnst"
	"github.com/dairyline/distributor/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccessLog stores a request-scoped logger on the request context and logs
// every request once it completes. Probe paths are logged at debug level.
func AccessLog(lg *zap.Logger, quiet ...string) gin.HandlerFunc {
	if lg == nil {
		lg = zap.NewNop()
	}
	lg = lg.Named("http")
	skip := make(map[string]struct{}, len(quiet))
	for _, p := range quiet {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		reqLogger := lg.With(zap.String("request_id", c.GetString(cnst.CtxKeyRequestID)))
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), reqLogger))

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		}
		if _, ok := skip[c.Request.URL.Path]; ok {
			reqLogger.Debug("HTTP request", fields...)
			return
		}
		fields = append(fields,
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		)
		if tenantID := c.GetHeader(cnst.HeaderTenantID); tenantID != "" {
			fields = append(fields, zap.String("tenant_id", tenantID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		reqLogger.Info("HTTP request", fields...)
	}
}
