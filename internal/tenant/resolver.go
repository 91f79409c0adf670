package tenant

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/dairyline/distributor/internal/apiserver/database"
	"github.com/dairyline/distributor/internal/common/cnst"
	"github.com/dairyline/distributor/internal/common/errorx"
	"github.com/dairyline/distributor/pkg/metrics"
	"github.com/dairyline/distributor/pkg/trace"

	"go.uber.org/zap"
)

// Identifier sources, in priority order
const (
	SourceHeader = "header"
	SourceQuery  = "query"
	SourceBody   = "body"
	SourceActor  = "actor"
	SourceNone   = "none"
)

// CompanyLookup loads a company by tenant id regardless of its status
type CompanyLookup interface {
	GetCompanyByTenantID(ctx context.Context, tenantID string) (*database.Company, error)
}

// Sources carries every place a tenant id may come from
type Sources struct {
	Header string
	Query  string
	Body   string
	Actor  *Actor
}

// Pick returns the first non-empty identifier, normalized, and where it came from
func (s Sources) Pick() (id, source string) {
	candidates := []struct{ value, source string }{
		{s.Header, SourceHeader},
		{s.Query, SourceQuery},
		{s.Body, SourceBody},
	}
	if s.Actor != nil {
		candidates = append(candidates, struct{ value, source string }{s.Actor.TenantID, SourceActor})
	}
	for _, c := range candidates {
		if v := NormalizeID(c.value); v != "" {
			return v, c.source
		}
	}
	return "", SourceNone
}

// NormalizeID trims and uppercases a tenant id
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// Resolver turns request sources into a tenant Context
type Resolver struct {
	companies CompanyLookup
	logger    *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewResolver creates a Resolver
func NewResolver(companies CompanyLookup, logger *zap.Logger, m *metrics.Metrics) *Resolver {
	return &Resolver{
		companies: companies,
		logger:    logger.Named("tenant.resolver"),
		metrics:   m,
		now:       time.Now,
	}
}

// Resolve runs the strict pipeline: missing id, unknown company, inactive
// subscription, then inactive or suspended company. Each step short-circuits.
func (r *Resolver) Resolve(ctx context.Context, src Sources) (*Context, error) {
	id, source := src.Pick()
	tc, err := r.resolve(ctx, id, src.Actor)
	r.metrics.TenantResolved(source, outcome(err))
	return tc, err
}

// ResolveOptional never rejects except for an inactive subscription. Any
// other failure yields a none context.
func (r *Resolver) ResolveOptional(ctx context.Context, src Sources) (*Context, error) {
	id, source := src.Pick()
	tc, err := r.resolve(ctx, id, src.Actor)
	switch {
	case err == nil:
	case errors.Is(err, errorx.ErrSubscriptionInactive):
	default:
		if !errors.Is(err, errorx.ErrTenantIDRequired) && !errors.Is(err, errorx.ErrCompanyNotFound) {
			r.logger.Warn("optional tenant resolution failed", zap.String("tenant_id", id), zap.Error(err))
		}
		tc, err = noneContext(src.Actor), nil
	}
	r.metrics.TenantResolved(source, outcome(err))
	return tc, err
}

func (r *Resolver) resolve(ctx context.Context, id string, actor *Actor) (*Context, error) {
	span := trace.Tracer(cnst.TraceTenant).Start(ctx, cnst.SpanTenantResolve)
	defer span.End()

	if id == "" {
		return nil, errorx.ErrTenantIDRequired
	}
	span.WithAttrs(trace.AttrTenantID.String(id))

	company, err := r.companies.GetCompanyByTenantID(span.Ctx, id)
	if err != nil {
		if errors.Is(err, cnst.ErrNotFound) {
			return nil, errorx.ErrCompanyNotFound
		}
		r.logger.Error("failed to load company", zap.String("tenant_id", id), zap.Error(err))
		return nil, span.Fail(err)
	}

	// A lapsed subscription is reported before the company flags so a
	// suspended tenant still learns it has zero days left.
	now := r.now()
	if !SubscriptionActive(&company.Subscription, now) {
		return nil, errorx.ErrSubscriptionInactive.
			WithDetail("daysRemaining", DaysRemaining(&company.Subscription, now)).
			WithDetail("status", company.Subscription.Status)
	}
	if !company.IsActive || company.IsSuspended {
		return nil, errorx.ErrCompanyNotFound
	}

	return NewContext(company, actor), nil
}

// CheckAccess rejects a regular actor acting on a tenant other than its own
func CheckAccess(actor *Actor, tc *Context) error {
	if actor.IsSuperAdmin() {
		return nil
	}
	if actor == nil {
		return errorx.ErrUnauthorized
	}
	if !tc.Resolved() || NormalizeID(actor.TenantID) != tc.ID {
		return errorx.ErrCrossTenantAccess
	}
	return nil
}

// SubscriptionActive reports whether sub grants access at now
func SubscriptionActive(sub *database.Subscription, now time.Time) bool {
	if sub.Status != database.SubscriptionActive {
		return false
	}
	return sub.EndDate == nil || sub.EndDate.After(now)
}

// DaysRemaining is the number of started days left until the subscription
// ends, never negative. A subscription without end date reports 0.
func DaysRemaining(sub *database.Subscription, now time.Time) int {
	if sub.EndDate == nil {
		return 0
	}
	left := sub.EndDate.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Hours() / 24))
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return errorx.ConvertToAPIError(err).Reason
}
