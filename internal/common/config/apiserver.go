package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type (
	APIServerConfig struct {
		Server     ServerConfig     `yaml:"server"`
		Database   DatabaseConfig   `yaml:"database"`
		Redis      RedisConfig      `yaml:"redis"`
		Logger     LoggerConfig     `yaml:"logger"`
		JWT        JWTConfig        `yaml:"jwt"`
		SuperAdmin SuperAdminConfig `yaml:"super_admin"`
		Tenant     TenantConfig     `yaml:"tenant"`
		Metrics    MetricsConfig    `yaml:"metrics"`
		Tracing    TracingConfig    `yaml:"tracing"`
		I18n       I18nConfig       `yaml:"i18n"`
	}

	ServerConfig struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Mode string `yaml:"mode"` // gin mode: debug, release, test
	}

	// I18nConfig represents the internationalization configuration
	I18nConfig struct {
		Path string `yaml:"path"` // Path to i18n translation files
	}

	DatabaseConfig struct {
		Type     string `yaml:"type"`     // mysql, postgres, sqlite, sqlite3
		Host     string `yaml:"host"`     // localhost
		Port     int    `yaml:"port"`     // 3306 (for mysql), 5432 (for postgres)
		User     string `yaml:"user"`     // root (for mysql), postgres (for postgres)
		Password string `yaml:"password"` // password
		DBName   string `yaml:"dbname"`   // database name, file path for sqlite
		SSLMode  string `yaml:"sslmode"`  // disable (for postgres)
	}

	JWTConfig struct {
		SecretKey string        `yaml:"secret_key"`
		Duration  time.Duration `yaml:"duration"`
	}

	// TenantConfig tunes tenant onboarding and resolution
	TenantConfig struct {
		AllocatorMaxAttempts int           `yaml:"allocator_max_attempts"`
		TrialDays            int           `yaml:"trial_days"`
		CacheTTL             time.Duration `yaml:"cache_ttl"`
		// ExpirySweep is how often lapsed subscriptions are marked expired. Negative disables the sweep.
		ExpirySweep time.Duration `yaml:"expiry_sweep"`
	}
)

func (c *APIServerConfig) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5235
	}
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Database.Type == "sqlite" && c.Database.DBName == "" {
		c.Database.DBName = "./data/distributor.db"
	}
	if c.JWT.Duration <= 0 {
		c.JWT.Duration = 24 * time.Hour
	}
	if c.Tenant.AllocatorMaxAttempts <= 0 {
		c.Tenant.AllocatorMaxAttempts = 999
	}
	if c.Tenant.TrialDays <= 0 {
		c.Tenant.TrialDays = 30
	}
	if c.Tenant.CacheTTL <= 0 {
		c.Tenant.CacheTTL = 5 * time.Minute
	}
	if c.Tenant.ExpirySweep == 0 {
		c.Tenant.ExpirySweep = time.Hour
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "distributor"
	}
	if c.I18n.Path == "" {
		c.I18n.Path = "configs/i18n"
	}
}

// Validate checks the settings the server cannot start without
func (c *APIServerConfig) Validate() error {
	if len(c.JWT.SecretKey) < 32 {
		return fmt.Errorf("jwt.secret_key must be at least 32 characters")
	}
	switch c.Database.Type {
	case "postgres", "mysql", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	return nil
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	switch c.Type {
	case "postgres":
		return c.getPostgresDSN()
	case "mysql":
		return c.getMySQLDSN()
	case "sqlite", "sqlite3":
		// Ensure the directory for the SQLite database exists.
		// If the directory cannot be created, it's a fatal error.
		if c.DBName != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(c.DBName), 0755); err != nil {
				panic(fmt.Errorf("failed to create directory for sqlite database: %w", err))
			}
		}
		return c.DBName // For SQLite, DBName is the file path
	default:
		return ""
	}
}

// getPostgresDSN returns PostgreSQL connection string
func (c *DatabaseConfig) getPostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// getMySQLDSN returns MySQL connection string
func (c *DatabaseConfig) getMySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
