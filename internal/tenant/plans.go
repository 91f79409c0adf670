package tenant

import (
	"time"

	"github.com/dairyline/distributor/internal/apiserver/database"

	"github.com/ifuryst/lol"
)

// Feature names
const (
	FeatureDealers         = "dealers"
	FeatureProducts        = "products"
	FeatureOrders          = "orders"
	FeatureReports         = "reports"
	FeatureInventory       = "inventory"
	FeatureAdvancedReports = "advanced_reports"
	FeatureAPIAccess       = "api_access"
	FeatureMultiUser       = "multi_user"
)

// Plan is a catalog entry. Negative limits are unlimited.
type Plan struct {
	Name        string
	MaxUsers    int
	MaxProducts int
	MaxOrders   int
	MaxDealers  int
	Features    []string
}

var plans = map[string]Plan{
	database.PlanTrial: {
		Name: database.PlanTrial, MaxUsers: 2, MaxProducts: 50, MaxOrders: 100, MaxDealers: 10,
		Features: []string{FeatureDealers, FeatureProducts, FeatureOrders},
	},
	database.PlanBasic: {
		Name: database.PlanBasic, MaxUsers: 5, MaxProducts: 200, MaxOrders: 1000, MaxDealers: 50,
		Features: []string{FeatureDealers, FeatureProducts, FeatureOrders, FeatureReports},
	},
	database.PlanPremium: {
		Name: database.PlanPremium, MaxUsers: 20, MaxProducts: 1000, MaxOrders: 10000, MaxDealers: 200,
		Features: []string{FeatureDealers, FeatureProducts, FeatureOrders, FeatureReports,
			FeatureInventory, FeatureAdvancedReports, FeatureMultiUser},
	},
	database.PlanEnterprise: {
		Name: database.PlanEnterprise, MaxUsers: database.Unlimited, MaxProducts: database.Unlimited,
		MaxOrders: database.Unlimited, MaxDealers: database.Unlimited,
		Features: []string{FeatureDealers, FeatureProducts, FeatureOrders, FeatureReports,
			FeatureInventory, FeatureAdvancedReports, FeatureMultiUser, FeatureAPIAccess},
	},
}

// LookupPlan returns the catalog entry for name
func LookupPlan(name string) (Plan, bool) {
	p, ok := plans[name]
	return p, ok
}

// FeatureSet turns a feature list into the stored map, dropping duplicates
func FeatureSet(names []string) database.Features {
	set := make(database.Features, len(names))
	for _, n := range lol.UniqSlice(names) {
		if n != "" {
			set[n] = true
		}
	}
	return set
}

// Subscription builds an active subscription on p starting at start. days <= 0
// leaves the end date open.
func (p Plan) Subscription(start time.Time, days int) database.Subscription {
	sub := database.Subscription{
		Plan:        p.Name,
		Status:      database.SubscriptionActive,
		StartDate:   start,
		MaxUsers:    p.MaxUsers,
		MaxProducts: p.MaxProducts,
		MaxOrders:   p.MaxOrders,
		MaxDealers:  p.MaxDealers,
		Features:    FeatureSet(p.Features),
	}
	if days > 0 {
		end := start.AddDate(0, 0, days)
		sub.EndDate = &end
	}
	return sub
}
