package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dairyline/distributor/internal/common/config"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestGetLogLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"dpanic":  zapcore.DPanicLevel,
		"panic":   zapcore.PanicLevel,
		"fatal":   zapcore.FatalLevel,
		"unknown": zapcore.InfoLevel, // default
	}
	for in, exp := range cases {
		assert.Equal(t, exp, getLogLevel(in))
	}
}

func TestSetDefaultsAndNewLogger(t *testing.T) {
	cfg := &config.LoggerConfig{}
	setLoggerDefaults(cfg)
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
	assert.Equal(t, 100, cfg.MaxSize)
	assert.Equal(t, 3, cfg.MaxBackups)
	assert.Equal(t, 7, cfg.MaxAge)
	assert.Equal(t, "Local", cfg.TimeZone)
	assert.NotEmpty(t, cfg.TimeFormat)

	assert.NotNil(t, getEncoder(cfg))

	lg, err := NewLogger(cfg)
	assert.NoError(t, err)
	assert.NotNil(t, lg)
}

func TestResolveTimeZone(t *testing.T) {
	assert.Equal(t, "UTC", resolveTimeZone(&config.LoggerConfig{TimeZone: "UTC"}).String())
	assert.Equal(t, "Local", resolveTimeZone(&config.LoggerConfig{TimeZone: "Not/AZone"}).String())
}

func TestNewLogger_FileWithStacktrace(t *testing.T) {
	tmp := t.TempDir()
	cfg := &config.LoggerConfig{
		Output:     "file",
		FilePath:   filepath.Join(tmp, "logs", "app.log"),
		Format:     "console",
		Color:      true,
		Stacktrace: true,
		Level:      "debug",
		TimeZone:   "UTC",
	}

	lg, err := NewLogger(cfg)
	assert.NoError(t, err)
	assert.NotNil(t, lg)

	lg.Debug("debug message")
	lg.Error("error message")
	_ = lg.Sync()

	_, err = os.Stat(filepath.Dir(cfg.FilePath))
	assert.NoError(t, err)
}

func TestContextLogger(t *testing.T) {
	base := zap.NewNop()
	assert.Same(t, base, FromContext(context.Background(), base))
	assert.NotNil(t, FromContext(context.Background(), nil))

	named := base.Named("req")
	ctx := WithContext(context.Background(), named)
	assert.Same(t, named, FromContext(ctx, base))
}
