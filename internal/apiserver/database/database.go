package database

import (
	"context"
	"fmt"

	"github.com/dairyline/distributor/internal/common/cnst"
	"github.com/dairyline/distributor/internal/common/config"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the gorm-backed store shared by the company registry, the
// repositories and the ledger.
type DB struct {
	db  *gorm.DB
	typ string
}

// New opens the database described by cfg
func New(cfg *config.DatabaseConfig) (*DB, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case "postgres":
		dialector = openPostgres(cfg)
	case "mysql":
		dialector = openMySQL(cfg)
	case "sqlite":
		dialector = openSQLite(cfg)
	case "sqlite3":
		dialector = openSQLite3(cfg)
	default:
		return nil, fmt.Errorf("%w: %s", cnst.ErrUnsupportedDatabase, cfg.Type)
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if isMemorySQLite(cfg) {
		// every connection to :memory: is a fresh database
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return &DB{db: gormDB, typ: cfg.Type}, nil
}

// Wrap adapts an already opened gorm handle
func Wrap(db *gorm.DB) *DB {
	return &DB{db: db, typ: db.Dialector.Name()}
}

// Migrate creates or updates every table
func (d *DB) Migrate() error {
	if err := d.db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the connection
func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Conn returns the handle bound to ctx, joining a transaction when one is
// carried by ctx.
func (d *DB) Conn(ctx context.Context) *gorm.DB {
	return getDBFromContext(ctx, d.db)
}

// Transaction runs fn inside a database transaction. Nested calls join the
// outer transaction.
func (d *DB) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if TransactionFromContext(ctx) != nil {
		return fn(ctx)
	}
	hooks := &commitHooks{}
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ContextWithTransaction(ctx, tx), commitHooksKey{}, hooks))
	})
	if err != nil {
		return err
	}
	for _, h := range hooks.fns {
		h()
	}
	return nil
}
