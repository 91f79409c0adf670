package cache

import (
	"context"
	"encoding/json"

	"github.com/dairyline/distributor/internal/apiserver/database"

	"go.uber.org/zap"
)

// CompanyStore is the source of truth behind CompanyCache
type CompanyStore interface {
	GetCompanyByTenantID(ctx context.Context, tenantID string) (*database.Company, error)
}

// CompanyCache is a read-through cache of companies keyed by tenant id. Admin
// mutations must call Invalidate.
type CompanyCache struct {
	store  CompanyStore
	layers *MultiLayerCache
	logger *zap.Logger
}

// NewCompanyCache wraps store with layers
func NewCompanyCache(store CompanyStore, layers *MultiLayerCache, logger *zap.Logger) *CompanyCache {
	return &CompanyCache{store: store, layers: layers, logger: logger.Named("cache.company")}
}

// GetCompanyByTenantID returns the cached company or loads it from the store.
// Lookup failures are never cached.
func (c *CompanyCache) GetCompanyByTenantID(ctx context.Context, tenantID string) (*database.Company, error) {
	key := companyKey(tenantID)
	if data, ok := c.layers.Get(ctx, key); ok {
		var company database.Company
		if err := json.Unmarshal(data, &company); err == nil {
			return &company, nil
		}
		c.logger.Warn("dropping undecodable cache entry", zap.String("tenant_id", tenantID))
		_ = c.layers.Delete(ctx, key)
	}

	company, err := c.store.GetCompanyByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(company)
	if err == nil {
		err = c.layers.Set(ctx, key, data)
	}
	if err != nil {
		c.logger.Warn("failed to cache company", zap.String("tenant_id", tenantID), zap.Error(err))
	}
	return company, nil
}

// Invalidate drops tenantID from every layer
func (c *CompanyCache) Invalidate(ctx context.Context, tenantID string) {
	if err := c.layers.Delete(ctx, companyKey(tenantID)); err != nil {
		c.logger.Warn("failed to invalidate company", zap.String("tenant_id", tenantID), zap.Error(err))
	}
}

func companyKey(tenantID string) string {
	return "company:" + tenantID
}
