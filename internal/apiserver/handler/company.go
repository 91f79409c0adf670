package handler

import (
	"time"

	"github.com/dairyline/distributor/internal/apiserver/database"
	"github.com/dairyline/distributor/internal/common/dto"
	"github.com/dairyline/distributor/internal/common/errorx"
	"github.com/dairyline/distributor/internal/onboarding"
	"github.com/dairyline/distributor/internal/repository"
	"github.com/dairyline/distributor/internal/tenant"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Company handles registration and the tenant's view of itself
type Company struct {
	base
	onboarding *onboarding.Service
	now        func() time.Time
}

// NewCompany creates a Company handler
func NewCompany(db *database.DB, svc *onboarding.Service, errs *errorx.ErrorHandler, logger *zap.Logger) *Company {
	return &Company{
		base:       base{db: db, errs: errs, logger: logger.Named("handler.company")},
		onboarding: svc,
		now:        time.Now,
	}
}

// Register creates a company on the trial plan together with its admin user
func (h *Company) Register(c *gin.Context) {
	var req dto.RegisterCompanyRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	company, admin, err := h.onboarding.Register(c.Request.Context(), onboarding.Registration{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		AdminUsername: req.AdminUsername,
		AdminPassword: req.AdminPassword,
		AdminName:     req.AdminName,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	created(c, dto.RegisterCompanyResponse{TenantID: company.TenantID, Slug: company.Slug, Admin: userInfo(admin)})
}

// Me returns the resolved company
func (h *Company) Me(c *gin.Context) {
	ok(c, tenant.FromGin(c).Company)
}

// Usage reports the company's consumption of every limited resource
func (h *Company) Usage(c *gin.Context) {
	tc := tenant.FromGin(c)
	usage, err := countUsage(c, h.db, tc)
	if err != nil {
		h.fail(c, err)
		return
	}

	sub := &tc.Company.Subscription
	resp := dto.UsageResponse{
		TenantID:      tc.ID,
		Plan:          sub.Plan,
		Status:        sub.Status,
		DaysRemaining: tenant.DaysRemaining(sub, h.now()),
		Usage:         make(map[string]dto.UsageItem, len(tenant.Kinds)),
	}
	for _, kind := range tenant.Kinds {
		limit := tenant.Limit(sub, kind)
		resp.Usage[string(kind)] = dto.UsageItem{Used: usage[kind], Limit: limit, Unlimited: limit < 0}
	}
	ok(c, resp)
}

// UsageCounter counts kind for the gate. The count is always restricted to
// the resolved company, also for super admins.
func UsageCounter(db *database.DB, kind tenant.Kind) tenant.UsageCounter {
	return func(c *gin.Context, tc *tenant.Context) (int64, error) {
		repo, err := ownRepo(db, tc)
		if err != nil {
			return 0, err
		}
		return countKind(c, repo, kind)
	}
}

func countUsage(c *gin.Context, db *database.DB, tc *tenant.Context) (map[tenant.Kind]int64, error) {
	repo, err := ownRepo(db, tc)
	if err != nil {
		return nil, err
	}
	out := make(map[tenant.Kind]int64, len(tenant.Kinds))
	for _, kind := range tenant.Kinds {
		n, err := countKind(c, repo, kind)
		if err != nil {
			return nil, err
		}
		out[kind] = n
	}
	return out, nil
}

func ownRepo(db *database.DB, tc *tenant.Context) (*repository.Repository, error) {
	if !tc.Resolved() {
		return nil, errorx.ErrTenantIDRequired
	}
	return repository.ForTenant(db, tenant.NewContext(tc.Company, nil))
}

func countKind(c *gin.Context, repo *repository.Repository, kind tenant.Kind) (int64, error) {
	ctx := c.Request.Context()
	switch kind {
	case tenant.KindUsers:
		return repo.CountUsers(ctx)
	case tenant.KindProducts:
		return repo.CountProducts(ctx)
	case tenant.KindOrders:
		return repo.CountOrders(ctx)
	case tenant.KindDealers:
		return repo.CountDealers(ctx)
	}
	return 0, nil
}
