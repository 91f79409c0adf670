package cnst

import "errors"

var (
	// ErrTenantScopeRequired is returned when a tenant-scoped repository is built without a resolved tenant
	ErrTenantScopeRequired = errors.New("tenant scope required")
	// ErrSuperAdminRequired is returned when an unscoped repository is requested by a regular actor
	ErrSuperAdminRequired = errors.New("super admin required")
	// ErrNonPositiveAmount is returned for ledger entries with zero or negative amounts
	ErrNonPositiveAmount = errors.New("amount must be positive")
	// ErrInvalidBalanceType is returned for balance types other than credit and debit
	ErrInvalidBalanceType = errors.New("balance type must be credit or debit")
	// ErrOutstandingBalance is returned when deactivating a dealer that still carries a balance
	ErrOutstandingBalance = errors.New("dealer has outstanding balance")
	// ErrUnsupportedDatabase is returned for unknown database types
	ErrUnsupportedDatabase = errors.New("unsupported database type")
)

var (
	// ErrNotFound is returned by repositories when no row matches the tenant-scoped filter
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when a unique index rejects an insert or update
	ErrDuplicateKey = errors.New("duplicate key")
)
