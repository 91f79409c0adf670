package repository

import (
	"context"

	"github.com/dairyline/distributor/internal/apiserver/database"
)

// CreateProduct inserts a product for the bound tenant. Pricing must already
// be computed.
func (r *Repository) CreateProduct(ctx context.Context, p *database.Product) error {
	if err := r.stamp(&p.TenantID); err != nil {
		return err
	}
	return database.WrapError(r.db.Conn(ctx).Create(p).Error)
}

// ListProducts returns a page of products and the total count
func (r *Repository) ListProducts(ctx context.Context, page, pageSize int) ([]*database.Product, int64, error) {
	query := r.scoped(ctx, &database.Product{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var products []*database.Product
	err := query.Order("code asc").Scopes(database.Paginate(page, pageSize)).Find(&products).Error
	return products, total, err
}

// CountProducts counts the active products of the bound tenant
func (r *Repository) CountProducts(ctx context.Context) (int64, error) {
	return r.count(ctx, &database.Product{}, "is_active = ?", true)
}
