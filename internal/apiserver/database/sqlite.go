package database

import (
	"strings"

	"github.com/dairyline/distributor/internal/common/config"

	"github.com/glebarez/sqlite"
	cgosqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const sqliteBusyTimeout = "_pragma=busy_timeout(5000)"

// openSQLite uses the pure go driver
func openSQLite(cfg *config.DatabaseConfig) gorm.Dialector {
	dsn := cfg.GetDSN()
	if !isMemorySQLite(cfg) && !strings.Contains(dsn, "?") {
		dsn += "?" + sqliteBusyTimeout
	}
	return sqlite.Open(dsn)
}

// openSQLite3 uses the cgo driver
func openSQLite3(cfg *config.DatabaseConfig) gorm.Dialector {
	return cgosqlite.Open(cfg.GetDSN())
}

func isMemorySQLite(cfg *config.DatabaseConfig) bool {
	return (cfg.Type == "sqlite" || cfg.Type == "sqlite3") && strings.Contains(cfg.DBName, ":memory:")
}
