package repository

import (
	"context"

	"github.com/dairyline/distributor/internal/apiserver/database"
)

// CreateUser inserts a user for the bound tenant
func (r *Repository) CreateUser(ctx context.Context, u *database.User) error {
	if err := r.stamp(&u.TenantID); err != nil {
		return err
	}
	return database.WrapError(r.db.Conn(ctx).Create(u).Error)
}

// FindUser looks a user up by username within the visible tenants
func (r *Repository) FindUser(ctx context.Context, username string) (*database.User, error) {
	return first[database.User](r.scoped(ctx, &database.User{}).Where("username = ?", username))
}

// CountUsers counts the active users of the bound tenant
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	return r.count(ctx, &database.User{}, "is_active = ?", true)
}
