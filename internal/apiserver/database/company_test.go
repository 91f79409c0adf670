package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dairyline/distributor/internal/common/cnst"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCompany(t *testing.T, db *DB, tenantID string) *Company {
	t.Helper()
	end := time.Now().Add(30 * 24 * time.Hour)
	c := &Company{
		TenantID: tenantID,
		Name:     "Company " + tenantID,
		Slug:     "company-" + tenantID,
		IsActive: true,
		Subscription: Subscription{
			Plan:      PlanTrial,
			Status:    SubscriptionActive,
			StartDate: time.Now(),
			EndDate:   &end,
			MaxUsers:  5,
			Features:  Features{"dealers": true},
		},
	}
	require.NoError(t, db.CreateCompany(context.Background(), c))
	return c
}

func TestNumericTenantIDs_FiltersAndSorts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	for _, id := range []string{"001", "010", "ABC", "T1X", "1000", "002"} {
		seedCompany(t, db, id)
	}

	ids, err := db.NumericTenantIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"010", "002", "001"}, ids)

	ok, err := db.TenantIDExists(ctx, "ABC")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = db.TenantIDExists(ctx, "999")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateCompany_DuplicateTenantID(t *testing.T) {
	db := newTestDB(t)
	seedCompany(t, db, "001")

	dup := &Company{TenantID: "001", Name: "Other", Slug: "other"}
	err := db.CreateCompany(context.Background(), dup)
	assert.ErrorIs(t, err, cnst.ErrDuplicateKey)
}

func TestGetCompany_RoundTripsSubscription(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedCompany(t, db, "007")

	got, err := db.GetCompanyByTenantID(ctx, "007")
	require.NoError(t, err)
	assert.Equal(t, PlanTrial, got.Subscription.Plan)
	assert.True(t, got.Subscription.Features["dealers"])
	require.NotNil(t, got.Subscription.EndDate)

	_, err = db.GetCompanyByTenantID(ctx, "404")
	assert.ErrorIs(t, err, cnst.ErrNotFound)

	got.IsSuspended = true
	got.SuspensionReason = "unpaid"
	require.NoError(t, db.UpdateCompany(ctx, got))
	again, err := db.GetCompanyByTenantID(ctx, "007")
	require.NoError(t, err)
	assert.True(t, again.IsSuspended)
	assert.Equal(t, "unpaid", again.SuspensionReason)

	exists, err := db.SlugExists(ctx, "company-007")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestListCompanies_FilterAndPage(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		seedCompany(t, db, fmt.Sprintf("%03d", i))
	}
	c, err := db.GetCompanyByTenantID(ctx, "003")
	require.NoError(t, err)
	c.IsSuspended = true
	require.NoError(t, db.UpdateCompany(ctx, c))

	page, total, err := db.ListCompanies(ctx, CompanyQuery{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "003", page[0].TenantID)

	suspended := true
	page, total, err = db.ListCompanies(ctx, CompanyQuery{Suspended: &suspended})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "003", page[0].TenantID)
}

func TestOrderOutstanding(t *testing.T) {
	o := &Order{TotalAmount: decimal.NewFromInt(500), PaidAmount: decimal.NewFromInt(200), Status: OrderPartial}
	assert.True(t, o.Outstanding().Equal(decimal.NewFromInt(300)))

	o.Status = OrderCancelled
	assert.True(t, o.Outstanding().IsZero())

	o = &Order{TotalAmount: decimal.NewFromInt(100), PaidAmount: decimal.NewFromInt(150)}
	assert.True(t, o.Outstanding().IsZero())
}

func TestBalanceTypeValid(t *testing.T) {
	assert.True(t, BalanceCredit.Valid())
	assert.True(t, BalanceDebit.Valid())
	assert.False(t, BalanceType("refund").Valid())
}
