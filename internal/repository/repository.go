// Package repository gives business code its only handle on tenant data.
// Every read carries the resolved tenant filter and every write is stamped
// with the resolved tenant id.
package repository

import (
	"context"

	"github.com/dairyline/distributor/internal/apiserver/database"
	"github.com/dairyline/distributor/internal/common/cnst"
	"github.com/dairyline/distributor/internal/tenant"

	"gorm.io/gorm"
)

// Repository is bound to one tenant context, or to none for super admins
type Repository struct {
	db       *database.DB
	filter   tenant.Filter
	tenantID string
}

// ForTenant binds a repository to a resolved tenant. It refuses nil, none
// and unresolved contexts.
func ForTenant(db *database.DB, tc *tenant.Context) (*Repository, error) {
	if !tc.Resolved() || tc.Filter == nil {
		return nil, cnst.ErrTenantScopeRequired
	}
	return &Repository{db: db, filter: tc.Filter, tenantID: tc.ID}, nil
}

// Unscoped returns a repository that sees every tenant. Only super admins
// may hold one.
func Unscoped(db *database.DB, actor *tenant.Actor) (*Repository, error) {
	if !actor.IsSuperAdmin() {
		return nil, cnst.ErrSuperAdminRequired
	}
	return &Repository{db: db, filter: tenant.Filter{}}, nil
}

// TenantID is the tenant writes are stamped with, empty when unscoped
func (r *Repository) TenantID() string {
	return r.tenantID
}

// Transaction runs fn atomically. Repository calls made with the ctx passed
// to fn join the transaction.
func (r *Repository) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.Transaction(ctx, fn)
}

// scoped returns a query for model restricted by the tenant filter
func (r *Repository) scoped(ctx context.Context, model any) *gorm.DB {
	q := r.db.Conn(ctx).Model(model)
	if id, ok := r.filter.TenantID(); ok {
		q = q.Where("tenant_id = ?", id)
	}
	return q
}

// owned returns a query for model restricted to the bound tenant. Unlike
// scoped it also narrows super admin repositories, so rows linked by a write
// never come from another tenant.
func (r *Repository) owned(ctx context.Context, model any) *gorm.DB {
	q := r.db.Conn(ctx).Model(model)
	if id := r.owner(); id != "" {
		q = q.Where("tenant_id = ?", id)
	}
	return q
}

func (r *Repository) owner() string {
	if id, ok := r.filter.TenantID(); ok {
		return id
	}
	return r.tenantID
}

// stamp sets the tenant of a new record. A bound filter always wins; an
// unfiltered super admin keeps the record's tenant or falls back to the
// resolved one.
func (r *Repository) stamp(tenantID *string) error {
	if id, ok := r.filter.TenantID(); ok {
		*tenantID = id
		return nil
	}
	if *tenantID == "" {
		*tenantID = r.tenantID
	}
	if *tenantID == "" {
		return cnst.ErrTenantScopeRequired
	}
	return nil
}

func (r *Repository) count(ctx context.Context, model any, conds ...any) (int64, error) {
	var n int64
	q := r.scoped(ctx, model)
	if len(conds) > 0 {
		q = q.Where(conds[0], conds[1:]...)
	}
	err := q.Count(&n).Error
	return n, err
}

func first[T any](q *gorm.DB) (*T, error) {
	var out T
	if err := q.First(&out).Error; err != nil {
		return nil, database.WrapError(err)
	}
	return &out, nil
}
