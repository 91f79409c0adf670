package cnst

// Tracer names used across the service
const (
	TraceTenant = "distributor/tenant"
	TraceLedger = "distributor/ledger"
)

// Span names
const (
	SpanTenantResolve     = "tenant.resolve"
	SpanTenantAllocate    = "tenant.allocate"
	SpanLedgerApply       = "ledger.apply_transaction"
	SpanLedgerEditOpening = "ledger.edit_opening"
	SpanLedgerStatement   = "ledger.statement"
)
