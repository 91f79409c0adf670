package errorx

import (
	"errors"
	"fmt"

	"github.com/dairyline/distributor/internal/common/cnst"
	"github.com/dairyline/distributor/internal/i18n"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler provides unified error handling capabilities
type ErrorHandler struct {
	logger     *zap.Logger
	translator *i18n.I18n
}

// NewErrorHandler creates a new error handler. translator may be nil.
func NewErrorHandler(logger *zap.Logger, translator *i18n.I18n) *ErrorHandler {
	return &ErrorHandler{
		logger:     logger.Named("errorx"),
		translator: translator,
	}
}

// HandleError converts err to an APIError, logs it and writes the rejection payload
func (h *ErrorHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	apiErr := ConvertToAPIError(err).clone()
	apiErr.TraceID = c.GetString(cnst.CtxKeyRequestID)
	if !apiErr.custom {
		apiErr.Message = h.translator.Translate(apiErr.Code, i18n.LanguageFromRequest(c.Request), apiErr.Message, apiErr.Details)
	}

	h.logError(c, apiErr, err)
	c.AbortWithStatusJSON(apiErr.HTTPStatus, apiErr.Body())
}

// converter is implemented by domain errors that carry their own catalog entry
type converter interface {
	APIError() *APIError
}

// ConvertToAPIError maps sentinel errors onto the catalog. Anything unknown becomes a
// generic internal error; the original is only logged, never echoed to the caller.
func ConvertToAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var conv converter
	if errors.As(err, &conv) {
		return conv.APIError()
	}

	switch {
	case errors.Is(err, cnst.ErrNotFound):
		return ErrResourceNotFound
	case errors.Is(err, cnst.ErrDuplicateKey):
		return ErrResourceExists
	case errors.Is(err, cnst.ErrNonPositiveAmount):
		return ErrInvalidAmount
	case errors.Is(err, cnst.ErrInvalidBalanceType):
		return ErrInvalidBalanceType
	case errors.Is(err, cnst.ErrOutstandingBalance):
		return ErrOutstandingBalance
	case errors.Is(err, cnst.ErrTenantScopeRequired):
		return ErrTenantIDRequired
	case errors.Is(err, cnst.ErrSuperAdminRequired):
		return ErrSuperAdminOnly
	}
	return ErrInternalServer
}

func (h *ErrorHandler) logError(c *gin.Context, apiErr *APIError, originalErr error) {
	fields := []zap.Field{
		zap.String("request_id", apiErr.TraceID),
		zap.String("error_code", apiErr.Code),
		zap.String("reason", apiErr.Reason),
		zap.Int("http_status", apiErr.HTTPStatus),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("client_ip", c.ClientIP()),
	}
	if originalErr != nil && !errors.As(originalErr, new(*APIError)) {
		fields = append(fields, zap.Error(originalErr))
	}

	switch apiErr.Severity {
	case SeverityInfo:
		h.logger.Info(apiErr.Message, fields...)
	case SeverityWarning:
		h.logger.Warn(apiErr.Message, fields...)
	default:
		h.logger.Error(apiErr.Message, fields...)
	}
}

// RecoveryMiddleware returns a gin middleware for panic recovery
func (h *ErrorHandler) RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		h.logger.Error("panic recovered", zap.String("panic", fmt.Sprintf("%v", recovered)), zap.Stack("stack"))
		h.HandleError(c, ErrServerPanic)
	})
}
