package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dairyline/distributor/internal/apiserver/database"
	"github.com/dairyline/distributor/internal/common/cnst"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultDealerGroup is created on demand for dealers without a group
const DefaultDealerGroup = "General"

// DealerQuery filters ListDealers
type DealerQuery struct {
	Search   string
	GroupID  uint
	Active   *bool
	Page     int
	PageSize int
}

// CreateDealerGroup inserts a dealer group
func (r *Repository) CreateDealerGroup(ctx context.Context, g *database.DealerGroup) error {
	if err := r.stamp(&g.TenantID); err != nil {
		return err
	}
	return database.WrapError(r.db.Conn(ctx).Create(g).Error)
}

// GetDealerGroup loads a group owned by the bound tenant, also for super admins
func (r *Repository) GetDealerGroup(ctx context.Context, id uint) (*database.DealerGroup, error) {
	return first[database.DealerGroup](r.owned(ctx, &database.DealerGroup{}).Where("id = ?", id))
}

// ListDealerGroups returns the groups of the bound tenant by name
func (r *Repository) ListDealerGroups(ctx context.Context) ([]*database.DealerGroup, error) {
	var groups []*database.DealerGroup
	err := r.scoped(ctx, &database.DealerGroup{}).Order("name asc").Find(&groups).Error
	return groups, err
}

// EnsureDealerGroup returns the group called name, creating it if needed
func (r *Repository) EnsureDealerGroup(ctx context.Context, name string) (*database.DealerGroup, error) {
	g, err := first[database.DealerGroup](r.owned(ctx, &database.DealerGroup{}).Where("name = ?", name))
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, cnst.ErrNotFound) {
		return nil, err
	}
	g = &database.DealerGroup{Name: name}
	if err := r.CreateDealerGroup(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// CreateDealer inserts a dealer for the bound tenant
func (r *Repository) CreateDealer(ctx context.Context, d *database.Dealer) error {
	if err := r.stamp(&d.TenantID); err != nil {
		return err
	}
	return database.WrapError(r.db.Conn(ctx).Create(d).Error)
}

// GetDealer loads a dealer visible to the bound tenant
func (r *Repository) GetDealer(ctx context.Context, id uint) (*database.Dealer, error) {
	return first[database.Dealer](r.scoped(ctx, &database.Dealer{}).Where("id = ?", id))
}

// ListDealers returns a page of dealers and the total match count
func (r *Repository) ListDealers(ctx context.Context, q DealerQuery) ([]*database.Dealer, int64, error) {
	query := r.scoped(ctx, &database.Dealer{})
	if s := strings.TrimSpace(q.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(code) LIKE ?)", like, like)
	}
	if q.GroupID != 0 {
		query = query.Where("dealer_group_id = ?", q.GroupID)
	}
	if q.Active != nil {
		query = query.Where("is_active = ?", *q.Active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var dealers []*database.Dealer
	err := query.Order("name asc").Scopes(database.Paginate(q.Page, q.PageSize)).Find(&dealers).Error
	return dealers, total, err
}

// CountDealers counts the active dealers of the bound tenant
func (r *Repository) CountDealers(ctx context.Context) (int64, error) {
	return r.count(ctx, &database.Dealer{}, "is_active = ?", true)
}

// UpdateDealer writes non-financial dealer fields. The filter is the
// dealer's own tenant so a write can never cross tenants.
func (r *Repository) UpdateDealer(ctx context.Context, d *database.Dealer, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()
	return r.updateDealer(ctx, d, fields)
}

// AdjustDealerBalance adds delta to current_balance in place
func (r *Repository) AdjustDealerBalance(ctx context.Context, d *database.Dealer, delta decimal.Decimal) error {
	return r.updateDealer(ctx, d, map[string]any{
		"current_balance": gorm.Expr("current_balance + ?", delta),
		"updated_at":      time.Now(),
	})
}

// SetDealerOpening replaces the opening balance and shifts current_balance
// by delta in the same statement
func (r *Repository) SetDealerOpening(ctx context.Context, d *database.Dealer, amount decimal.Decimal, typ database.BalanceType, delta decimal.Decimal) error {
	return r.updateDealer(ctx, d, map[string]any{
		"opening_balance":      amount,
		"opening_balance_type": string(typ),
		"current_balance":      gorm.Expr("current_balance + ?", delta),
		"updated_at":           time.Now(),
	})
}

func (r *Repository) updateDealer(ctx context.Context, d *database.Dealer, fields map[string]any) error {
	if id, ok := r.filter.TenantID(); ok && d.TenantID != id {
		return cnst.ErrNotFound
	}
	res := r.db.Conn(ctx).Model(&database.Dealer{}).
		Where("id = ? AND tenant_id = ?", d.ID, d.TenantID).
		Updates(fields)
	if res.Error != nil {
		return database.WrapError(res.Error)
	}
	if res.RowsAffected != 1 {
		return cnst.ErrNotFound
	}
	return nil
}

// CreateDealerTransaction appends a ledger row stamped with the dealer's tenant
func (r *Repository) CreateDealerTransaction(ctx context.Context, tx *database.DealerTransaction) error {
	if err := r.stamp(&tx.TenantID); err != nil {
		return err
	}
	return database.WrapError(r.db.Conn(ctx).Create(tx).Error)
}

// ListDealerTransactions returns every ledger row of a dealer, oldest first
func (r *Repository) ListDealerTransactions(ctx context.Context, dealerID uint) ([]*database.DealerTransaction, error) {
	q := r.scoped(ctx, &database.DealerTransaction{}).Where("dealer_id = ?", dealerID)
	var rows []*database.DealerTransaction
	err := q.Order("date asc").Order("id asc").Find(&rows).Error
	return rows, err
}
