package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dairyline/distributor/internal/apiserver/cache"
	"github.com/dairyline/distributor/internal/apiserver/database"
	"github.com/dairyline/distributor/internal/apiserver/handler"
	"github.com/dairyline/distributor/internal/apiserver/scheduler"
	"github.com/dairyline/distributor/internal/auth/jwt"
	"github.com/dairyline/distributor/internal/common/config"
	"github.com/dairyline/distributor/internal/common/errorx"
	"github.com/dairyline/distributor/internal/i18n"
	"github.com/dairyline/distributor/pkg/logger"
	"github.com/dairyline/distributor/pkg/metrics"
	"github.com/dairyline/distributor/pkg/trace"
	"github.com/dairyline/distributor/pkg/version"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var (
	configPath string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of apiserver",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("apiserver version %s\n", version.Get())
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and seed the super admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd.Context())
		},
	}

	rootCmd = &cobra.Command{
		Use:   "apiserver",
		Short: "Distributor API Server",
		Long:  `Distributor API Server serves the multi-tenant dealer, order and catalog API`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "conf", "c", "apiserver.yaml", "path to configuration file")
	rootCmd.AddCommand(versionCmd, migrateCmd)
}

func loadConfig() *config.APIServerConfig {
	cfg, cfgPath, err := config.LoadConfig[config.APIServerConfig](configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration from %s: %v", cfgPath, err)
	}
	return cfg
}

func initLogger(cfg *config.APIServerConfig) *zap.Logger {
	lg, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	return lg
}

func initDatabase(lg *zap.Logger, cfg *config.DatabaseConfig) *database.DB {
	db, err := database.New(cfg)
	if err != nil {
		lg.Fatal("Failed to initialize database", zap.String("type", cfg.Type), zap.Error(err))
	}
	if err := db.Migrate(); err != nil {
		lg.Fatal("Failed to migrate database", zap.Error(err))
	}
	return db
}

func initI18n(lg *zap.Logger, cfg *config.I18nConfig) *i18n.I18n {
	translator, err := i18n.Load(cfg.Path)
	if err != nil {
		lg.Warn("Failed to load translations, using default messages", zap.String("path", cfg.Path), zap.Error(err))
		return nil
	}
	return translator
}

// initCompanyCache builds the company cache with redis as L2 when configured
func initCompanyCache(ctx context.Context, lg *zap.Logger, db *database.DB, cfg *config.APIServerConfig) *cache.CompanyCache {
	layers := cache.MultiLayerCacheConfig{KeyPrefix: cfg.Redis.Prefix, TTL: cfg.Tenant.CacheTTL}
	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	switch {
	case err != nil:
		lg.Warn("Redis unavailable, company cache stays in memory", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	case client != nil:
		layers.RedisClient = client
		lg.Info("Company cache backed by redis", zap.String("addr", cfg.Redis.Addr))
	}
	return cache.NewCompanyCache(db, cache.NewMultiLayerCache(layers, lg), lg)
}

func initRouter(db *database.DB, companies *cache.CompanyCache, translator *i18n.I18n, cfg *config.APIServerConfig, lg *zap.Logger) *gin.Engine {
	jwtService, err := jwt.NewService(cfg.JWT)
	if err != nil {
		lg.Fatal("Failed to initialize JWT service", zap.Error(err))
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics)
	}

	return handler.NewRouter(handler.Deps{
		DB:        db,
		Companies: companies,
		Cache:     companies,
		JWT:       jwtService,
		Errors:    errorx.NewErrorHandler(lg, translator),
		Metrics:   m,
		Logger:    lg,
		Config:    cfg,
	})
}

func migrate(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := loadConfig()
	lg := initLogger(cfg)
	defer lg.Sync()

	db := initDatabase(lg, &cfg.Database)
	defer db.Close()

	if err := database.InitSuperAdmin(ctx, db, &cfg.SuperAdmin); err != nil {
		return fmt.Errorf("failed to seed super admin: %w", err)
	}
	lg.Info("Database migrated", zap.String("type", cfg.Database.Type))
	return nil
}

func run() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := loadConfig()
	lg := initLogger(cfg)
	defer lg.Sync()

	lg.Info("Starting apiserver", zap.String("version", version.Get()))

	if cfg.Tracing.Enabled {
		shutdownTracing, err := trace.InitTracing(ctx, &cfg.Tracing, lg)
		if err != nil {
			lg.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := shutdownTracing(sctx); err != nil {
				lg.Warn("Failed to flush traces", zap.Error(err))
			}
		}()
	}

	db := initDatabase(lg, &cfg.Database)
	defer db.Close()

	if err := database.InitSuperAdmin(ctx, db, &cfg.SuperAdmin); err != nil {
		lg.Fatal("Failed to initialize super admin", zap.Error(err))
	}

	companies := initCompanyCache(ctx, lg, db, cfg)
	if cfg.Tenant.ExpirySweep > 0 {
		sweeper := scheduler.NewExpiryScheduler(scheduler.ExpirySchedulerConfig{
			Store:    db,
			Cache:    companies,
			Interval: cfg.Tenant.ExpirySweep,
			Logger:   lg,
		})
		if err := sweeper.Start(ctx); err != nil {
			lg.Fatal("Failed to start expiry scheduler", zap.Error(err))
		}
		defer sweeper.Stop()
	}
	translator := initI18n(lg, &cfg.I18n)
	router := initRouter(db, companies, translator, cfg, lg)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		lg.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("Shutting down apiserver")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		lg.Error("Failed to shutdown server", zap.Error(err))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
