package tenant

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dairyline/distributor/internal/common/cnst"
	"github.com/dairyline/distributor/pkg/metrics"
	"github.com/dairyline/distributor/pkg/trace"

	"go.uber.org/zap"
)

const (
	maxNumericTenantID     = 999
	defaultAllocateAttempt = 999
)

// IDStore is the persisted state the allocator reads
type IDStore interface {
	// NumericTenantIDs returns the ids matching ^[0-9]{3}$, highest first
	NumericTenantIDs(ctx context.Context) ([]string, error)
	TenantIDExists(ctx context.Context, id string) (bool, error)
}

// Allocator hands out three digit tenant ids. It probes for a free id but
// does not lock: two concurrent registrations can still pick the same
// candidate, and the unique index on companies.tenant_id rejects the loser.
type Allocator struct {
	store       IDStore
	maxAttempts int
	logger      *zap.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewAllocator creates an Allocator. maxAttempts <= 0 uses 999.
func NewAllocator(store IDStore, maxAttempts int, logger *zap.Logger, m *metrics.Metrics) *Allocator {
	if maxAttempts <= 0 {
		maxAttempts = defaultAllocateAttempt
	}
	return &Allocator{
		store:       store,
		maxAttempts: maxAttempts,
		logger:      logger.Named("tenant.allocator"),
		metrics:     m,
		now:         time.Now,
	}
}

// Allocate returns the next free tenant id. It never fails: when the numeric
// space is exhausted or the store errors, it returns a timestamp-derived id.
func (a *Allocator) Allocate(ctx context.Context) string {
	span := trace.Tracer(cnst.TraceTenant).Start(ctx, cnst.SpanTenantAllocate)
	defer span.End()
	ctx = span.Ctx

	ids, err := a.store.NumericTenantIDs(ctx)
	if err != nil {
		return a.fallback("list tenant ids", span.Fail(err))
	}

	candidate := 1
	if len(ids) > 0 {
		highest, err := strconv.Atoi(ids[0])
		if err != nil {
			return a.fallback("parse tenant id", span.Fail(err))
		}
		candidate = highest + 1
	}

	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		if candidate > maxNumericTenantID {
			return a.fallback("numeric tenant id space exhausted", nil)
		}
		id := fmt.Sprintf("%03d", candidate)
		taken, err := a.store.TenantIDExists(ctx, id)
		if err != nil {
			return a.fallback("check tenant id", span.Fail(err))
		}
		if !taken {
			a.metrics.TenantAllocated(metrics.AllocNumeric)
			span.WithAttrs(trace.AttrTenantID.String(id))
			return id
		}
		a.logger.Debug("tenant id taken, probing next", zap.String("candidate", id))
		candidate++
	}

	return a.fallback("allocation attempts exhausted", nil)
}

func (a *Allocator) fallback(reason string, err error) string {
	id := FallbackID(a.now())
	a.logger.Warn("falling back to timestamp tenant id",
		zap.String("reason", reason),
		zap.String("tenant_id", id),
		zap.Error(err),
	)
	a.metrics.TenantAllocated(metrics.AllocFallback)
	return id
}

// FallbackID derives the degraded-mode tenant id from t
func FallbackID(t time.Time) string {
	return "T" + strings.ToUpper(strconv.FormatInt(t.UnixNano(), 36))
}
