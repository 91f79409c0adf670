package config

import (
	"os"
	"regexp"
	"time"

	"github.com/dairyline/distributor/pkg/helper"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type (
	// SuperAdminConfig represents the platform super admin seeded at startup
	SuperAdminConfig struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	}

	// LoggerConfig represents the logger configuration
	LoggerConfig struct {
		Level      string `yaml:"level"`       // debug, info, warn, error
		Format     string `yaml:"format"`      // json, console
		Output     string `yaml:"output"`      // stdout, file
		FilePath   string `yaml:"file_path"`   // path to log file when output is file
		MaxSize    int    `yaml:"max_size"`    // max size of log file in MB
		MaxBackups int    `yaml:"max_backups"` // max number of backup files
		MaxAge     int    `yaml:"max_age"`     // max age of backup files in days
		Compress   bool   `yaml:"compress"`    // whether to compress backup files
		Color      bool   `yaml:"color"`       // whether to use color in console output
		Stacktrace bool   `yaml:"stacktrace"`  // whether to include stacktrace in error logs
		TimeZone   string `yaml:"time_zone"`   // time zone for log timestamps, e.g., "UTC", default is local
		TimeFormat string `yaml:"time_format"` // time format for log timestamps, default is "2006-01-02 15:04:05"
	}

	// RedisConfig represents the redis connection used by the company cache
	RedisConfig struct {
		Addr     string        `yaml:"addr"`
		Username string        `yaml:"username"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		Prefix   string        `yaml:"prefix"`
		TTL      time.Duration `yaml:"ttl"`
	}

	// MetricsConfig represents the prometheus metrics configuration
	MetricsConfig struct {
		Enabled   bool      `yaml:"enabled"`
		Path      string    `yaml:"path"`
		Namespace string    `yaml:"namespace"`
		Buckets   []float64 `yaml:"buckets"`
	}

	// TracingConfig represents OpenTelemetry tracing configuration
	TracingConfig struct {
		Enabled     bool              `yaml:"enabled"`
		ServiceName string            `yaml:"service_name"`
		Endpoint    string            `yaml:"endpoint"`     // e.g. localhost:4317 or http://localhost:4318
		Protocol    string            `yaml:"protocol"`     // grpc or http
		Insecure    bool              `yaml:"insecure"`     // allow insecure connection
		SamplerRate float64           `yaml:"sampler_rate"` // 0.0~1.0
		Environment string            `yaml:"environment"`  // env tag: dev/staging/prod
		Headers     map[string]string `yaml:"headers"`
	}
)

type Type interface {
	APIServerConfig
}

// LoadConfig loads configuration from a YAML file with environment variable support
func LoadConfig[T Type](filename string) (*T, string, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfgPath := helper.GetCfgPath(filename)
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, cfgPath, err
	}

	// Resolve environment variables
	data = resolveEnv(data)
	var cfg T
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, cfgPath, err
	}

	if apiCfg, ok := any(&cfg).(*APIServerConfig); ok {
		apiCfg.setDefaults()
		if err := apiCfg.Validate(); err != nil {
			return nil, cfgPath, err
		}
	}

	return &cfg, cfgPath, nil
}

var envPattern = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// resolveEnv replaces environment variable placeholders in YAML content
func resolveEnv(content []byte) []byte {
	return envPattern.ReplaceAllFunc(content, func(match []byte) []byte {
		matches := envPattern.FindSubmatch(match)
		envKey := string(matches[1])
		var defaultValue string

		if len(matches) > 2 {
			defaultValue = string(matches[2])
		}

		if value, exists := os.LookupEnv(envKey); exists {
			return []byte(value)
		}
		return []byte(defaultValue)
	})
}
