package database

import (
	"github.com/dairyline/distributor/internal/common/config"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func openMySQL(cfg *config.DatabaseConfig) gorm.Dialector {
	return mysql.Open(cfg.GetDSN())
}
