package tenant

import (
	"fmt"

	"github.com/dairyline/distributor/internal/apiserver/database"
	"github.com/dairyline/distributor/internal/common/errorx"
	"github.com/dairyline/distributor/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Kind is a resource counted against a plan limit
type Kind string

const (
	KindUsers    Kind = "users"
	KindProducts Kind = "products"
	KindOrders   Kind = "orders"
	KindDealers  Kind = "dealers"
)

// Kinds lists every limited resource
var Kinds = []Kind{KindUsers, KindProducts, KindOrders, KindDealers}

// Limit returns the plan limit for kind. A negative limit is unlimited.
func Limit(sub *database.Subscription, kind Kind) int {
	switch kind {
	case KindUsers:
		return sub.MaxUsers
	case KindProducts:
		return sub.MaxProducts
	case KindOrders:
		return sub.MaxOrders
	case KindDealers:
		return sub.MaxDealers
	}
	return database.Unlimited
}

// LimitError reports a denied limit check
type LimitError struct {
	Kind      Kind
	Current   int64
	Limit     int
	Requested int64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s limit exceeded: current %d, limit %d, requested %d", e.Kind, e.Current, e.Limit, e.Requested)
}

// APIError maps e onto the error catalog
func (e *LimitError) APIError() *errorx.APIError {
	return errorx.ErrLimitExceeded.
		WithMessage("%s limit exceeded. Current: %d, Limit: %d, Requested: %d", e.Kind, e.Current, e.Limit, e.Requested).
		WithDetail("resource", string(e.Kind)).
		WithDetail("current", e.Current).
		WithDetail("limit", e.Limit).
		WithDetail("requested", e.Requested)
}

// CheckLimit denies exactly when current+requested exceeds the plan limit.
// Super admins always pass.
func CheckLimit(sub *database.Subscription, actor *Actor, kind Kind, current, requested int64) error {
	if actor.IsSuperAdmin() {
		return nil
	}
	limit := Limit(sub, kind)
	if limit < 0 {
		return nil
	}
	if current+requested > int64(limit) {
		return &LimitError{Kind: kind, Current: current, Limit: limit, Requested: requested}
	}
	return nil
}

// HasFeature reports whether the plan grants name. Unknown names are false.
func HasFeature(sub *database.Subscription, name string) bool {
	if sub == nil {
		return false
	}
	return sub.Features[name]
}

// UsageCounter counts the current usage of a resource for the attached tenant
type UsageCounter func(c *gin.Context, tc *Context) (int64, error)

// Gate exposes feature and limit checks to gin routes. It must run after
// RequireTenant.
type Gate struct {
	errs    *errorx.ErrorHandler
	metrics *metrics.Metrics
}

// NewGate creates a Gate
func NewGate(errs *errorx.ErrorHandler, m *metrics.Metrics) *Gate {
	return &Gate{errs: errs, metrics: m}
}

// RequireFeature rejects tenants whose plan lacks name
func (g *Gate) RequireFeature(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ActorFromGin(c).IsSuperAdmin() {
			c.Next()
			return
		}
		tc := FromGin(c)
		if !tc.Resolved() {
			g.errs.HandleError(c, errorx.ErrTenantIDRequired)
			return
		}
		if !HasFeature(&tc.Company.Subscription, name) {
			g.metrics.GateDenied("feature", name)
			g.errs.HandleError(c, errorx.ErrFeatureUnavailable.
				WithMessage("Feature '%s' not available in current plan", name).
				WithDetail("feature", name).
				WithDetail("plan", tc.Company.Subscription.Plan))
			return
		}
		c.Next()
	}
}

// EnforceLimit rejects a request that would create one more kind than the
// plan allows
func (g *Gate) EnforceLimit(kind Kind, counter UsageCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFromGin(c)
		if actor.IsSuperAdmin() {
			c.Next()
			return
		}
		tc := FromGin(c)
		if !tc.Resolved() {
			g.errs.HandleError(c, errorx.ErrTenantIDRequired)
			return
		}
		current, err := counter(c, tc)
		if err != nil {
			g.errs.HandleError(c, err)
			return
		}
		if err := CheckLimit(&tc.Company.Subscription, actor, kind, current, 1); err != nil {
			g.metrics.GateDenied("limit", string(kind))
			g.errs.HandleError(c, err)
			return
		}
		c.Next()
	}
}
