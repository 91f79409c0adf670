package database

import (
	"context"
	"regexp"
	"time"

	"gorm.io/gorm"
)

var numericTenantID = regexp.MustCompile(`^[0-9]{3}$`)

// NumericTenantIDs returns every three digit tenant id, highest first
func (d *DB) NumericTenantIDs(ctx context.Context) ([]string, error) {
	var raw []string
	err := d.Conn(ctx).Model(&Company{}).
		Where("LENGTH(tenant_id) = ?", 3).
		Order("tenant_id desc").
		Pluck("tenant_id", &raw).Error
	if err != nil {
		return nil, err
	}

	ids := raw[:0]
	for _, id := range raw {
		if numericTenantID.MatchString(id) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// TenantIDExists reports whether a company already holds id
func (d *DB) TenantIDExists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := d.Conn(ctx).Model(&Company{}).Where("tenant_id = ?", id).Count(&count).Error
	return count > 0, err
}

// SlugExists reports whether a company already uses slug
func (d *DB) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := d.Conn(ctx).Model(&Company{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// CreateCompany inserts a company
func (d *DB) CreateCompany(ctx context.Context, company *Company) error {
	return WrapError(d.Conn(ctx).Create(company).Error)
}

// GetCompanyByTenantID loads a company regardless of its status
func (d *DB) GetCompanyByTenantID(ctx context.Context, tenantID string) (*Company, error) {
	var company Company
	if err := d.Conn(ctx).Where("tenant_id = ?", tenantID).First(&company).Error; err != nil {
		return nil, WrapError(err)
	}
	return &company, nil
}

// CompanyQuery filters ListCompanies
type CompanyQuery struct {
	Plan      string
	Status    string
	Suspended *bool
	Page      int
	PageSize  int
}

// ListCompanies returns a page of companies and the total match count
func (d *DB) ListCompanies(ctx context.Context, q CompanyQuery) ([]*Company, int64, error) {
	query := d.Conn(ctx).Model(&Company{})
	if q.Plan != "" {
		query = query.Where("sub_plan = ?", q.Plan)
	}
	if q.Status != "" {
		query = query.Where("sub_status = ?", q.Status)
	}
	if q.Suspended != nil {
		query = query.Where("is_suspended = ?", *q.Suspended)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var companies []*Company
	err := query.Order("tenant_id asc").Scopes(Paginate(q.Page, q.PageSize)).Find(&companies).Error
	return companies, total, err
}

// UpdateCompany persists every field of company
func (d *DB) UpdateCompany(ctx context.Context, company *Company) error {
	return WrapError(d.Conn(ctx).Save(company).Error)
}

// ExpireSubscriptions flips every active subscription whose end date is
// before now to expired and returns the affected tenant ids
func (d *DB) ExpireSubscriptions(ctx context.Context, now time.Time) ([]string, error) {
	var ids []string
	err := d.Transaction(ctx, func(ctx context.Context) error {
		q := d.Conn(ctx).Model(&Company{}).
			Where("sub_status = ? AND sub_end_date IS NOT NULL AND sub_end_date < ?", SubscriptionActive, now)
		if err := q.Pluck("tenant_id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return d.Conn(ctx).Model(&Company{}).
			Where("tenant_id IN ?", ids).
			Updates(map[string]any{"sub_status": SubscriptionExpired, "updated_at": now}).Error
	})
	if err != nil {
		return nil, WrapError(err)
	}
	return ids, nil
}

// CreateUser inserts a user
func (d *DB) CreateUser(ctx context.Context, user *User) error {
	return WrapError(d.Conn(ctx).Create(user).Error)
}

// GetUserByUsername looks a user up across all tenants. Only login and the
// lookup endpoint use it.
func (d *DB) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	if err := d.Conn(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, WrapError(err)
	}
	return &user, nil
}

// Paginate limits a query to one page. pageSize defaults to 20 and is capped at 100.
func Paginate(page, pageSize int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page <= 0 {
			page = 1
		}
		switch {
		case pageSize <= 0:
			pageSize = 20
		case pageSize > 100:
			pageSize = 100
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}
