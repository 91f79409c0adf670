// Package tenant resolves, authorizes and gates the company a request acts on.
package tenant

import (
	"github.com/dairyline/distributor/internal/apiserver/database"
	"github.com/dairyline/distributor/internal/common/cnst"
)

// Actor is the authenticated principal. Only the super admin role changes
// scoping behaviour.
type Actor struct {
	UserID   uint
	Username string
	Role     string
	TenantID string
}

// IsSuperAdmin reports whether a bypasses tenant scoping and limit checks
func (a *Actor) IsSuperAdmin() bool {
	return a != nil && a.Role == cnst.RoleSuperAdmin
}

// Filter is the query predicate every tenant-scoped read and write carries.
// It is empty for super admins.
type Filter map[string]any

const filterKey = "tenant_id"

// TenantID returns the tenant the filter restricts to, if any
func (f Filter) TenantID() (string, bool) {
	id, ok := f[filterKey].(string)
	return id, ok && id != ""
}

// Context is the resolved tenant attached to a request
type Context struct {
	ID      string
	Company *database.Company
	Filter  Filter
	// None marks the optional path where nothing was resolved
	None bool
}

// Resolved reports whether c names a concrete tenant
func (c *Context) Resolved() bool {
	return c != nil && !c.None && c.ID != ""
}

// Unrestricted reports whether c grants cross-tenant visibility
func (c *Context) Unrestricted() bool {
	return c != nil && c.Filter != nil && len(c.Filter) == 0
}

// NewContext builds the context attached after a successful resolution
func NewContext(company *database.Company, actor *Actor) *Context {
	return &Context{
		ID:      company.TenantID,
		Company: company,
		Filter:  filterFor(company.TenantID, actor),
	}
}

func noneContext(actor *Actor) *Context {
	tc := &Context{None: true}
	if actor.IsSuperAdmin() {
		tc.Filter = Filter{}
	}
	return tc
}

func filterFor(tenantID string, actor *Actor) Filter {
	if actor.IsSuperAdmin() {
		return Filter{}
	}
	return Filter{filterKey: tenantID}
}
