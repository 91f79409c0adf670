package repository

import (
	"context"
	"testing"

	"github.com/dairyline/distributor/internal/apiserver/database"
	"github.com/dairyline/distributor/internal/common/cnst"
	"github.com/dairyline/distributor/internal/common/config"
	"github.com/dairyline/distributor/internal/tenant"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func scopedFor(t *testing.T, db *database.DB, tenantID string, actor *tenant.Actor) *Repository {
	t.Helper()
	repo, err := ForTenant(db, tenant.NewContext(&database.Company{TenantID: tenantID}, actor))
	require.NoError(t, err)
	return repo
}

func seedDealer(t *testing.T, repo *Repository, code string) *database.Dealer {
	t.Helper()
	ctx := context.Background()
	g, err := repo.EnsureDealerGroup(ctx, DefaultDealerGroup)
	require.NoError(t, err)
	d := &database.Dealer{Code: code, Name: "Dealer " + code, DealerGroupID: g.ID, IsActive: true}
	require.NoError(t, repo.CreateDealer(ctx, d))
	return d
}

func TestForTenant_RefusesUnresolved(t *testing.T) {
	db := newTestDB(t)
	_, err := ForTenant(db, nil)
	assert.ErrorIs(t, err, cnst.ErrTenantScopeRequired)
	_, err = ForTenant(db, &tenant.Context{None: true, Filter: tenant.Filter{}})
	assert.ErrorIs(t, err, cnst.ErrTenantScopeRequired)
	_, err = ForTenant(db, &tenant.Context{ID: "001"})
	assert.ErrorIs(t, err, cnst.ErrTenantScopeRequired)
}

func TestUnscoped_SuperAdminOnly(t *testing.T) {
	db := newTestDB(t)
	_, err := Unscoped(db, &tenant.Actor{Role: cnst.RoleAdmin})
	assert.ErrorIs(t, err, cnst.ErrSuperAdminRequired)
	_, err = Unscoped(db, nil)
	assert.ErrorIs(t, err, cnst.ErrSuperAdminRequired)

	repo, err := Unscoped(db, &tenant.Actor{Role: cnst.RoleSuperAdmin})
	require.NoError(t, err)
	assert.Empty(t, repo.TenantID())

	err = repo.CreateDealer(context.Background(), &database.Dealer{Code: "X", Name: "x"})
	assert.ErrorIs(t, err, cnst.ErrTenantScopeRequired)
}

func TestTenantIsolation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	t1 := scopedFor(t, db, "001", &tenant.Actor{TenantID: "001"})
	t2 := scopedFor(t, db, "002", &tenant.Actor{TenantID: "002"})

	d1 := seedDealer(t, t1, "D1")
	d2 := seedDealer(t, t2, "D1")
	assert.Equal(t, "001", d1.TenantID)
	assert.Equal(t, "002", d2.TenantID)

	_, err := t1.GetDealer(ctx, d2.ID)
	assert.ErrorIs(t, err, cnst.ErrNotFound)

	list, total, err := t1.ListDealers(ctx, DealerQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	for _, d := range list {
		assert.Equal(t, "001", d.TenantID)
	}

	err = t1.AdjustDealerBalance(ctx, d2, decimal.NewFromInt(100))
	assert.ErrorIs(t, err, cnst.ErrNotFound)
	err = t1.UpdateDealer(ctx, d2, map[string]any{"name": "hijacked"})
	assert.ErrorIs(t, err, cnst.ErrNotFound)
	again, err := t2.GetDealer(ctx, d2.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dealer D1", again.Name)
	assert.True(t, again.FinancialInfo.CurrentBalance.IsZero())

	// a forged tenant id on the record is overwritten by the bound tenant
	forged := &database.Order{TenantID: "002", OrderNumber: "O-1", DealerID: d1.ID, TotalAmount: decimal.NewFromInt(10)}
	require.NoError(t, t1.CreateOrder(ctx, forged))
	assert.Equal(t, "001", forged.TenantID)
	_, err = t2.GetOrder(ctx, forged.ID)
	assert.ErrorIs(t, err, cnst.ErrNotFound)

	n, err := t2.CountOrders(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSuperAdminSeesEveryTenant(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedDealer(t, scopedFor(t, db, "001", nil), "A")
	d2 := seedDealer(t, scopedFor(t, db, "002", nil), "B")

	admin, err := Unscoped(db, &tenant.Actor{Role: cnst.RoleSuperAdmin})
	require.NoError(t, err)
	_, total, err := admin.ListDealers(ctx, DealerQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	// resolved to 001 but super admin: reads are unfiltered, writes stamped 001
	sa := scopedFor(t, db, "001", &tenant.Actor{Role: cnst.RoleSuperAdmin})
	got, err := sa.GetDealer(ctx, d2.ID)
	require.NoError(t, err)
	assert.Equal(t, "002", got.TenantID)
	require.NoError(t, sa.AdjustDealerBalance(ctx, got, decimal.NewFromInt(5)))

	p := &database.Product{Code: "P", Name: "Milk", MRP: decimal.NewFromInt(1), SellingPrice: decimal.NewFromInt(1), IsActive: true}
	require.NoError(t, sa.CreateProduct(ctx, p))
	assert.Equal(t, "001", p.TenantID)
}

func TestDealerGroups_StayWithinBoundTenant(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	other, err := scopedFor(t, db, "002", nil).EnsureDealerGroup(ctx, DefaultDealerGroup)
	require.NoError(t, err)
	assert.Equal(t, "002", other.TenantID)

	sa := scopedFor(t, db, "001", &tenant.Actor{Role: cnst.RoleSuperAdmin})
	own, err := sa.EnsureDealerGroup(ctx, DefaultDealerGroup)
	require.NoError(t, err)
	assert.Equal(t, "001", own.TenantID)
	assert.NotEqual(t, other.ID, own.ID)

	again, err := sa.EnsureDealerGroup(ctx, DefaultDealerGroup)
	require.NoError(t, err)
	assert.Equal(t, own.ID, again.ID)

	_, err = sa.GetDealerGroup(ctx, other.ID)
	assert.ErrorIs(t, err, cnst.ErrNotFound)
	got, err := sa.GetDealerGroup(ctx, own.ID)
	require.NoError(t, err)
	assert.Equal(t, "001", got.TenantID)

	groups, err := sa.ListDealerGroups(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 2, "listing stays unfiltered for super admins")
}

func TestDealerQueriesAndCounts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := scopedFor(t, db, "001", nil)
	seedDealer(t, repo, "AMUL-01")
	seedDealer(t, repo, "MD-02")
	inactive := seedDealer(t, repo, "MD-03")
	require.NoError(t, repo.UpdateDealer(ctx, inactive, map[string]any{"is_active": false}))

	n, err := repo.CountDealers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	list, total, err := repo.ListDealers(ctx, DealerQuery{Search: "md"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, list, 2)

	active := true
	_, total, err = repo.ListDealers(ctx, DealerQuery{Search: "md", Active: &active})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	dup := &database.Dealer{Code: "MD-02", Name: "dup", DealerGroupID: inactive.DealerGroupID}
	assert.ErrorIs(t, repo.CreateDealer(ctx, dup), cnst.ErrDuplicateKey)

	groups, err := repo.ListDealerGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, DefaultDealerGroup, groups[0].Name)
}

func TestOrderPaymentAndLists(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := scopedFor(t, db, "001", nil)
	d := seedDealer(t, repo, "D")

	o := &database.Order{OrderNumber: "O-1", DealerID: d.ID, Status: database.OrderPending, TotalAmount: decimal.NewFromInt(500)}
	require.NoError(t, repo.CreateOrder(ctx, o))
	require.NoError(t, repo.RecordOrderPayment(ctx, o, decimal.NewFromInt(200), database.OrderPartial))

	got, err := repo.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, got.PaidAmount.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, database.OrderPartial, got.Status)

	orders, err := repo.ListDealerOrders(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	other := scopedFor(t, db, "002", nil)
	assert.ErrorIs(t, other.RecordOrderPayment(ctx, got, decimal.NewFromInt(500), database.OrderPaid), cnst.ErrNotFound)
}

func TestUsersAndProducts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := scopedFor(t, db, "001", nil)

	require.NoError(t, repo.CreateUser(ctx, &database.User{Username: "ravi", Password: "x", Role: cnst.RoleStaff, IsActive: true}))
	n, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	u, err := repo.FindUser(ctx, "ravi")
	require.NoError(t, err)
	assert.Equal(t, "001", u.TenantID)
	_, err = scopedFor(t, db, "002", nil).FindUser(ctx, "ravi")
	assert.ErrorIs(t, err, cnst.ErrNotFound)

	for _, code := range []string{"B", "A"} {
		require.NoError(t, repo.CreateProduct(ctx, &database.Product{Code: code, Name: code, MRP: decimal.NewFromInt(10), SellingPrice: decimal.NewFromInt(9), IsActive: true}))
	}
	products, total, err := repo.ListProducts(ctx, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "A", products[0].Code)
	n, err = repo.CountProducts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestTransactionRollsBack(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := scopedFor(t, db, "001", nil)
	d := seedDealer(t, repo, "D")

	err := repo.Transaction(ctx, func(ctx context.Context) error {
		require.NoError(t, repo.AdjustDealerBalance(ctx, d, decimal.NewFromInt(100)))
		return repo.CreateDealer(ctx, &database.Dealer{Code: "D", Name: "dup", DealerGroupID: d.DealerGroupID})
	})
	assert.ErrorIs(t, err, cnst.ErrDuplicateKey)

	got, err := repo.GetDealer(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, got.FinancialInfo.CurrentBalance.IsZero())
}
