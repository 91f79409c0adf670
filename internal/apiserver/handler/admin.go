package handler

import (
	"context"
	"strings"

	"github.com/dairyline/distributor/internal/apiserver/database"
	"github.com/dairyline/distributor/internal/common/dto"
	"github.com/dairyline/distributor/internal/common/errorx"
	"github.com/dairyline/distributor/internal/tenant"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Invalidator drops a company from the resolution cache
type Invalidator interface {
	Invalidate(ctx context.Context, tenantID string)
}

// Admin is the super admin company console
type Admin struct {
	base
	cache Invalidator
}

// NewAdmin creates an Admin handler. cache may be nil.
func NewAdmin(db *database.DB, cache Invalidator, errs *errorx.ErrorHandler, logger *zap.Logger) *Admin {
	return &Admin{base: base{db: db, errs: errs, logger: logger.Named("handler.admin")}, cache: cache}
}

// ListCompanies pages through every company
func (h *Admin) ListCompanies(c *gin.Context) {
	var q dto.ListCompaniesQuery
	if err := bindQuery(c, &q); err != nil {
		h.fail(c, err)
		return
	}

	companies, total, err := h.db.ListCompanies(c.Request.Context(), database.CompanyQuery{
		Plan:      q.Plan,
		Status:    q.Status,
		Suspended: q.Suspended,
		Page:      q.Page,
		PageSize:  q.PageSize,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, dto.Page[*database.Company]{Items: companies, Total: total, Page: q.Page, PageSize: q.PageSize})
}

// UpdateSubscription changes plan, status, dates, limits or features
func (h *Admin) UpdateSubscription(c *gin.Context) {
	var req dto.UpdateSubscriptionRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	h.mutate(c, func(company *database.Company) error {
		return ApplySubscriptionUpdate(&company.Subscription, &req)
	})
}

// UpdateSuspension suspends or reinstates a company
func (h *Admin) UpdateSuspension(c *gin.Context) {
	var req dto.SuspensionRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	h.mutate(c, func(company *database.Company) error {
		company.IsSuspended = *req.Suspended
		company.SuspensionReason = ""
		if company.IsSuspended {
			company.SuspensionReason = strings.TrimSpace(req.Reason)
		}
		return nil
	})
}

// UpdateStatus activates or deactivates a company
func (h *Admin) UpdateStatus(c *gin.Context) {
	var req dto.StatusRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	h.mutate(c, func(company *database.Company) error {
		company.IsActive = *req.IsActive
		return nil
	})
}

// mutate loads the company named in the path, applies fn, saves it and
// drops it from the cache
func (h *Admin) mutate(c *gin.Context, fn func(*database.Company) error) {
	ctx := c.Request.Context()
	tenantID := tenant.NormalizeID(c.Param("tenantId"))

	company, err := h.db.GetCompanyByTenantID(ctx, tenantID)
	if err != nil {
		h.fail(c, notFound(err, "company", tenantID))
		return
	}
	if err := fn(company); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.db.UpdateCompany(ctx, company); err != nil {
		h.fail(c, err)
		return
	}
	if h.cache != nil {
		h.cache.Invalidate(ctx, tenantID)
	}

	h.log(c).Info("company updated",
		zap.String("tenant_id", tenantID),
		zap.String("by", tenant.ActorFromGin(c).Username),
		zap.String("path", c.FullPath()),
	)
	ok(c, company)
}

// ApplySubscriptionUpdate applies req to sub. A new plan resets limits and
// features to the plan defaults before explicit overrides apply.
func ApplySubscriptionUpdate(sub *database.Subscription, req *dto.UpdateSubscriptionRequest) error {
	if req.Plan != nil {
		plan, found := tenant.LookupPlan(*req.Plan)
		if !found {
			return errorx.ValidationError("plan", "unknown plan "+*req.Plan)
		}
		sub.Plan = plan.Name
		sub.MaxUsers = plan.MaxUsers
		sub.MaxProducts = plan.MaxProducts
		sub.MaxOrders = plan.MaxOrders
		sub.MaxDealers = plan.MaxDealers
		sub.Features = tenant.FeatureSet(plan.Features)
	}
	if req.Status != nil {
		sub.Status = *req.Status
	}
	if req.StartDate != nil {
		sub.StartDate = *req.StartDate
	}
	switch {
	case req.ClearEndDate && req.EndDate != nil:
		return errorx.ValidationError("endDate", "cannot be set together with clearEndDate")
	case req.ClearEndDate:
		sub.EndDate = nil
	case req.EndDate != nil:
		end := *req.EndDate
		sub.EndDate = &end
	}
	if sub.EndDate != nil && !sub.StartDate.IsZero() && sub.EndDate.Before(sub.StartDate) {
		return errorx.ValidationError("endDate", "must not be before startDate")
	}
	setLimit(&sub.MaxUsers, req.MaxUsers)
	setLimit(&sub.MaxProducts, req.MaxProducts)
	setLimit(&sub.MaxOrders, req.MaxOrders)
	setLimit(&sub.MaxDealers, req.MaxDealers)
	if req.Features != nil {
		sub.Features = tenant.FeatureSet(req.Features)
	}
	return nil
}

func setLimit(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
