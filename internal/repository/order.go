package repository

import (
	"context"
	"time"

	"github.com/dairyline/distributor/internal/apiserver/database"
	"github.com/dairyline/distributor/internal/common/cnst"

	"github.com/shopspring/decimal"
)

// CreateOrder inserts an order for the bound tenant
func (r *Repository) CreateOrder(ctx context.Context, o *database.Order) error {
	if err := r.stamp(&o.TenantID); err != nil {
		return err
	}
	return database.WrapError(r.db.Conn(ctx).Create(o).Error)
}

// GetOrder loads an order visible to the bound tenant
func (r *Repository) GetOrder(ctx context.Context, id uint) (*database.Order, error) {
	return first[database.Order](r.scoped(ctx, &database.Order{}).Where("id = ?", id))
}

// ListDealerOrders returns every order of a dealer, oldest first
func (r *Repository) ListDealerOrders(ctx context.Context, dealerID uint) ([]*database.Order, error) {
	q := r.scoped(ctx, &database.Order{}).Where("dealer_id = ?", dealerID)
	var orders []*database.Order
	err := q.Order("order_date asc").Order("id asc").Find(&orders).Error
	return orders, err
}

// CountOrders counts every order of the bound tenant
func (r *Repository) CountOrders(ctx context.Context) (int64, error) {
	return r.count(ctx, &database.Order{})
}

// RecordOrderPayment sets paid_amount and status, filtered by the order's
// own tenant
func (r *Repository) RecordOrderPayment(ctx context.Context, o *database.Order, paid decimal.Decimal, status string) error {
	if id, ok := r.filter.TenantID(); ok && o.TenantID != id {
		return cnst.ErrNotFound
	}
	res := r.db.Conn(ctx).Model(&database.Order{}).
		Where("id = ? AND tenant_id = ?", o.ID, o.TenantID).
		Updates(map[string]any{"paid_amount": paid, "status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return database.WrapError(res.Error)
	}
	if res.RowsAffected != 1 {
		return cnst.ErrNotFound
	}
	o.PaidAmount = paid
	o.Status = status
	return nil
}
