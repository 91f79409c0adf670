package handler

import (
	"github.com/dairyline/distributor/internal/apiserver/database"
	"github.com/dairyline/distributor/internal/apiserver/middleware"
	"github.com/dairyline/distributor/internal/auth/jwt"
	"github.com/dairyline/distributor/internal/common/cnst"
	"github.com/dairyline/distributor/internal/common/config"
	"github.com/dairyline/distributor/internal/common/errorx"
	"github.com/dairyline/distributor/internal/ledger"
	"github.com/dairyline/distributor/internal/onboarding"
	"github.com/dairyline/distributor/internal/tenant"
	"github.com/dairyline/distributor/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// Deps is everything the router wires together
type Deps struct {
	DB *database.DB
	// Companies backs tenant resolution, usually the company cache
	Companies tenant.CompanyLookup
	// Cache is invalidated by admin mutations; may be nil
	Cache   Invalidator
	JWT     *jwt.Service
	Errors  *errorx.ErrorHandler
	Metrics *metrics.Metrics
	Logger  *zap.Logger
	Config  *config.APIServerConfig
}

// NewRouter builds the gin engine with every route registered
func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(d.Errors.RecoveryMiddleware(), middleware.RequestID())
	if cfg.Tracing.Enabled {
		name := cfg.Tracing.ServiceName
		if name == "" {
			name = cnst.AppName
		}
		r.Use(otelgin.Middleware(name))
	}
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
	}
	r.Use(middleware.AccessLog(d.Logger, "/health", cfg.Metrics.Path))

	r.GET("/health", Health(d.DB))
	if d.Metrics != nil && cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(d.Metrics.Handler()))
	}

	allocator := tenant.NewAllocator(d.DB, cfg.Tenant.AllocatorMaxAttempts, d.Logger, d.Metrics)
	resolver := tenant.NewResolver(d.Companies, d.Logger, d.Metrics)
	tm := tenant.NewMiddleware(resolver, d.Errors)
	gate := tenant.NewGate(d.Errors, d.Metrics)
	ledgerSvc := ledger.NewService(d.Logger, d.Metrics)

	authH := NewAuth(d.DB, d.JWT, d.Errors, d.Logger)
	companyH := NewCompany(d.DB, onboarding.NewService(d.DB, allocator, cfg.Tenant.TrialDays, d.Logger), d.Errors, d.Logger)
	adminH := NewAdmin(d.DB, d.Cache, d.Errors, d.Logger)
	userH := NewUser(d.DB, d.Errors, d.Logger)
	dealerH := NewDealer(d.DB, ledgerSvc, d.Errors, d.Logger)
	orderH := NewOrder(d.DB, ledgerSvc, d.Errors, d.Logger)
	productH := NewProduct(d.DB, d.Errors, d.Logger)

	api := r.Group("/api")
	api.POST("/auth/login", authH.Login)
	api.POST("/companies/register", companyH.Register)

	authed := api.Group("", middleware.JWTAuthMiddleware(d.JWT, d.Errors))
	authed.GET("/users/lookup/:username", tm.OptionalTenant(), userH.Lookup)

	admin := authed.Group("/admin", middleware.RequireSuperAdmin(d.Errors))
	admin.GET("/companies", adminH.ListCompanies)
	admin.PUT("/companies/:tenantId/subscription", adminH.UpdateSubscription)
	admin.PUT("/companies/:tenantId/suspension", adminH.UpdateSuspension)
	admin.PUT("/companies/:tenantId/status", adminH.UpdateStatus)

	scoped := authed.Group("", tm.RequireTenant(), tm.CheckTenantAccess())
	scoped.GET("/companies/me", companyH.Me)
	scoped.GET("/companies/me/usage", companyH.Usage)

	dealers := scoped.Group("/dealers", gate.RequireFeature(tenant.FeatureDealers))
	dealers.POST("", gate.EnforceLimit(tenant.KindDealers, UsageCounter(d.DB, tenant.KindDealers)), dealerH.Create)
	dealers.GET("", dealerH.List)
	dealers.GET("/:id", dealerH.Get)
	dealers.PUT("/:id", dealerH.Update)
	dealers.DELETE("/:id", dealerH.Deactivate)
	dealers.POST("/:id/transactions", dealerH.AddTransaction)
	dealers.GET("/:id/statement", dealerH.Statement)

	orders := scoped.Group("/orders", gate.RequireFeature(tenant.FeatureOrders))
	orders.POST("", gate.EnforceLimit(tenant.KindOrders, UsageCounter(d.DB, tenant.KindOrders)), orderH.Create)
	orders.POST("/:id/payments", orderH.RecordPayment)

	products := scoped.Group("/products", gate.RequireFeature(tenant.FeatureProducts))
	products.POST("", gate.EnforceLimit(tenant.KindProducts, UsageCounter(d.DB, tenant.KindProducts)), productH.Create)
	products.GET("", productH.List)

	return r
}
