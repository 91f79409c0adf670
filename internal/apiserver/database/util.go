package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dairyline/distributor/internal/common/cnst"
	"github.com/dairyline/distributor/internal/common/config"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// IsDuplicateKeyError reports whether err is a unique index violation
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, cnst.ErrDuplicateKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}

// WrapError maps driver errors onto the sentinels in cnst
func WrapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return cnst.ErrNotFound
	case IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", cnst.ErrDuplicateKey, err)
	default:
		return err
	}
}

// InitSuperAdmin seeds the platform super admin if it does not exist yet
func InitSuperAdmin(ctx context.Context, d *DB, cfg *config.SuperAdminConfig) error {
	if cfg == nil || cfg.Username == "" || cfg.Password == "" {
		return nil
	}

	var count int64
	if err := d.Conn(ctx).Model(&User{}).Where("username = ?", cfg.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash super admin password: %w", err)
	}

	return d.CreateUser(ctx, &User{
		Username: cfg.Username,
		Password: string(hashed),
		Name:     "Platform Admin",
		Role:     cnst.RoleSuperAdmin,
		IsActive: true,
	})
}
