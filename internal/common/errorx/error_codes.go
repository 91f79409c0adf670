package errorx

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryMissingInput   ErrorCategory = "missing_input"
	CategoryValidation     ErrorCategory = "validation"
	CategoryAuthentication ErrorCategory = "authentication"
	CategoryForbidden      ErrorCategory = "forbidden"
	CategoryNotFound       ErrorCategory = "not_found"
	CategoryConflict       ErrorCategory = "conflict"
	CategoryInternal       ErrorCategory = "internal"
)

// Severity represents the severity level of an error
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// APIError is a business rejection or an internal failure surfaced to the route layer.
// Catalog values are templates; the With* helpers always return a copy.
type APIError struct {
	Code       string         `json:"code"`
	Reason     string         `json:"reason"`
	Message    string         `json:"message"`
	Category   ErrorCategory  `json:"category"`
	Severity   Severity       `json:"-"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	TraceID    string         `json:"trace_id,omitempty"`
	// custom marks messages set through WithMessage; those are never translated
	custom bool
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Reason, e.Message)
}

// Is matches catalog entries by code so wrapped copies still compare equal
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// JSON returns the error as a JSON string
func (e *APIError) JSON() string {
	out, _ := json.Marshal(e)
	return string(out)
}

func (e *APIError) clone() *APIError {
	c := *e
	c.Details = maps.Clone(e.Details)
	return &c
}

// WithDetail returns a copy carrying key=value in its details
func (e *APIError) WithDetail(key string, value any) *APIError {
	c := e.clone()
	if c.Details == nil {
		c.Details = make(map[string]any)
	}
	c.Details[key] = value
	return c
}

// WithMessage returns a copy with a more specific message
func (e *APIError) WithMessage(format string, args ...any) *APIError {
	c := e.clone()
	c.Message = fmt.Sprintf(format, args...)
	c.custom = true
	return c
}

// Body renders the structured rejection payload: success=false, code, reason, message
// and the details flattened at top level.
func (e *APIError) Body() map[string]any {
	body := map[string]any{
		"success": false,
		"code":    e.Code,
		"reason":  e.Reason,
		"message": e.Message,
	}
	for k, v := range e.Details {
		body[k] = v
	}
	if e.TraceID != "" {
		body["trace_id"] = e.TraceID
	}
	return body
}

var (
	// Missing input / validation (E1xxx)
	ErrInvalidInput = &APIError{
		Code: "E1001", Reason: "INVALID_INPUT", Message: "Invalid input provided",
		Category: CategoryValidation, Severity: SeverityInfo, HTTPStatus: http.StatusBadRequest,
	}
	ErrTenantIDRequired = &APIError{
		Code: "E1101", Reason: "TENANT_ID_REQUIRED", Message: "Tenant ID is required",
		Category: CategoryMissingInput, Severity: SeverityInfo, HTTPStatus: http.StatusBadRequest,
	}
	ErrInvalidAmount = &APIError{
		Code: "E1102", Reason: "INVALID_AMOUNT", Message: "Amount must be a positive number",
		Category: CategoryValidation, Severity: SeverityInfo, HTTPStatus: http.StatusBadRequest,
	}
	ErrInvalidBalanceType = &APIError{
		Code: "E1103", Reason: "INVALID_BALANCE_TYPE", Message: "Type must be credit or debit",
		Category: CategoryValidation, Severity: SeverityInfo, HTTPStatus: http.StatusBadRequest,
	}

	// Authentication (E2xxx)
	ErrUnauthorized = &APIError{
		Code: "E2001", Reason: "UNAUTHORIZED", Message: "Authentication required",
		Category: CategoryAuthentication, Severity: SeverityInfo, HTTPStatus: http.StatusUnauthorized,
	}
	ErrInvalidCredentials = &APIError{
		Code: "E2002", Reason: "INVALID_CREDENTIALS", Message: "Invalid username or password",
		Category: CategoryAuthentication, Severity: SeverityInfo, HTTPStatus: http.StatusUnauthorized,
	}

	// Forbidden (E3xxx)
	ErrForbidden = &APIError{
		Code: "E3001", Reason: "FORBIDDEN", Message: "Access denied",
		Category: CategoryForbidden, Severity: SeverityWarning, HTTPStatus: http.StatusForbidden,
	}
	ErrSubscriptionInactive = &APIError{
		Code: "E3101", Reason: "SUBSCRIPTION_INACTIVE", Message: "Company subscription is not active",
		Category: CategoryForbidden, Severity: SeverityInfo, HTTPStatus: http.StatusForbidden,
	}
	ErrCrossTenantAccess = &APIError{
		Code: "E3102", Reason: "CROSS_TENANT_ACCESS", Message: "Access denied for this company",
		Category: CategoryForbidden, Severity: SeverityWarning, HTTPStatus: http.StatusForbidden,
	}
	ErrFeatureUnavailable = &APIError{
		Code: "E3103", Reason: "FEATURE_UNAVAILABLE", Message: "Feature not available in current plan",
		Category: CategoryForbidden, Severity: SeverityInfo, HTTPStatus: http.StatusForbidden,
	}
	ErrLimitExceeded = &APIError{
		Code: "E3104", Reason: "PLAN_LIMIT_EXCEEDED", Message: "Plan limit exceeded",
		Category: CategoryForbidden, Severity: SeverityInfo, HTTPStatus: http.StatusForbidden,
	}
	ErrSuperAdminOnly = &APIError{
		Code: "E3105", Reason: "SUPER_ADMIN_ONLY", Message: "Super admin access required",
		Category: CategoryForbidden, Severity: SeverityWarning, HTTPStatus: http.StatusForbidden,
	}
	ErrUserDisabled = &APIError{
		Code: "E3106", Reason: "USER_DISABLED", Message: "User is disabled",
		Category: CategoryForbidden, Severity: SeverityInfo, HTTPStatus: http.StatusForbidden,
	}

	// Not found (E4xxx)
	ErrResourceNotFound = &APIError{
		Code: "E4001", Reason: "NOT_FOUND", Message: "Requested resource not found",
		Category: CategoryNotFound, Severity: SeverityInfo, HTTPStatus: http.StatusNotFound,
	}
	ErrCompanyNotFound = &APIError{
		Code: "E4101", Reason: "COMPANY_NOT_FOUND", Message: "Company not found or suspended",
		Category: CategoryNotFound, Severity: SeverityInfo, HTTPStatus: http.StatusNotFound,
	}

	// Conflict (E409x)
	ErrResourceExists = &APIError{
		Code: "E4091", Reason: "ALREADY_EXISTS", Message: "Resource already exists",
		Category: CategoryConflict, Severity: SeverityInfo, HTTPStatus: http.StatusConflict,
	}
	ErrOutstandingBalance = &APIError{
		Code: "E4093", Reason: "OUTSTANDING_BALANCE", Message: "Dealer cannot be deactivated while a balance is outstanding",
		Category: CategoryConflict, Severity: SeverityInfo, HTTPStatus: http.StatusConflict,
	}

	// Internal (E5xxx)
	ErrInternalServer = &APIError{
		Code: "E5001", Reason: "INTERNAL_ERROR", Message: "Internal server error occurred",
		Category: CategoryInternal, Severity: SeverityCritical, HTTPStatus: http.StatusInternalServerError,
	}
	ErrServerPanic = &APIError{
		Code: "E5000", Reason: "INTERNAL_ERROR", Message: "Server panic occurred",
		Category: CategoryInternal, Severity: SeverityCritical, HTTPStatus: http.StatusInternalServerError,
	}
)

// NotFoundError creates a not found error for a specific resource
func NotFoundError(resourceType string, identifier any) *APIError {
	return ErrResourceNotFound.
		WithMessage("%s not found", resourceType).
		WithDetail("resource", resourceType).
		WithDetail("id", identifier)
}

// ConflictError creates a conflict error for a specific resource
func ConflictError(resourceType, field string, value any) *APIError {
	return ErrResourceExists.
		WithMessage("%s with this %s already exists", resourceType, field).
		WithDetail("resource", resourceType).
		WithDetail("field", field).
		WithDetail("value", value)
}

// ValidationError creates a validation error naming the offending field
func ValidationError(field, reason string) *APIError {
	return ErrInvalidInput.
		WithMessage("%s: %s", field, reason).
		WithDetail("field", field)
}
