package cnst

const (
	// AppName is the service name used by logs, metrics and traces
	AppName = "distributor"
)

// Roles known to the tenant core. Only RoleSuperAdmin changes scoping behaviour.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleStaff      = "staff"
)

// Tenant identifier sources, in resolution priority order.
const (
	HeaderTenantID = "x-tenant-id"
	QueryTenantID  = "tenantId"
	BodyTenantID   = "tenantId"
)

const (
	// HeaderRequestID carries the per-request correlation id
	HeaderRequestID = "X-Request-ID"
)

// gin context keys
const (
	CtxKeyClaims        = "claims"
	CtxKeyActor         = "actor"
	CtxKeyTenant        = "tenant"
	CtxKeyTenantFilter  = "tenantFilter"
	CtxKeyRequestID     = "requestID"
	CtxKeyTranslator    = "translator"
	CtxKeyCompanyLookup = "companyLookup"
)
