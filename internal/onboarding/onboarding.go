// Package onboarding registers new companies.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/dairyline/distributor/internal/apiserver/database"
	"github.com/dairyline/distributor/internal/common/cnst"
	"github.com/dairyline/distributor/internal/common/errorx"
	"github.com/dairyline/distributor/internal/tenant"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const registerAttempts = 3

// Store is the persistence registration needs
type Store interface {
	tenant.IDStore
	SlugExists(ctx context.Context, slug string) (bool, error)
	GetUserByUsername(ctx context.Context, username string) (*database.User, error)
	CreateCompany(ctx context.Context, company *database.Company) error
	CreateUser(ctx context.Context, user *database.User) error
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Registration is a new company and its first admin
type Registration struct {
	Name    string
	Email   string
	Phone   string
	Address string

	AdminUsername string
	AdminPassword string
	AdminName     string
}

// Service creates companies on the trial plan
type Service struct {
	store     Store
	allocator *tenant.Allocator
	trialDays int
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a Service. trialDays <= 0 means 30.
func NewService(store Store, allocator *tenant.Allocator, trialDays int, logger *zap.Logger) *Service {
	if trialDays <= 0 {
		trialDays = 30
	}
	return &Service{
		store:     store,
		allocator: allocator,
		trialDays: trialDays,
		logger:    logger.Named("onboarding"),
		now:       time.Now,
	}
}

// Register allocates a tenant id and slug and stores the company with its
// admin user in one transaction. A lost race on the tenant id or slug is
// retried with fresh values; a lost race on the username is not.
func (s *Service) Register(ctx context.Context, r Registration) (*database.Company, *database.User, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return nil, nil, errorx.ValidationError("name", "is required")
	}
	username := strings.TrimSpace(r.AdminUsername)
	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return nil, nil, errorx.ConflictError("user", "username", username)
	} else if !errors.Is(err, cnst.ErrNotFound) {
		return nil, nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(r.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	plan, _ := tenant.LookupPlan(database.PlanTrial)
	for attempt := 1; ; attempt++ {
		tenantID := s.allocator.Allocate(ctx)
		slug, err := s.uniqueSlug(ctx, name)
		if err != nil {
			return nil, nil, err
		}

		company := &database.Company{
			TenantID:     tenantID,
			Name:         name,
			Slug:         slug,
			Email:        r.Email,
			Phone:        r.Phone,
			Address:      r.Address,
			Subscription: plan.Subscription(s.now(), s.trialDays),
			IsActive:     true,
		}
		admin := &database.User{
			TenantID: tenantID,
			Username: username,
			Password: string(hashed),
			Name:     r.AdminName,
			Role:     cnst.RoleAdmin,
			IsActive: true,
		}

		var usernameTaken bool
		err = s.store.Transaction(ctx, func(ctx context.Context) error {
			if err := s.store.CreateCompany(ctx, company); err != nil {
				return err
			}
			err := s.store.CreateUser(ctx, admin)
			usernameTaken = errors.Is(err, cnst.ErrDuplicateKey)
			return err
		})
		if err == nil {
			s.logger.Info("company registered",
				zap.String("tenant_id", tenantID),
				zap.String("slug", slug),
				zap.String("admin", username),
			)
			return company, admin, nil
		}
		if !errors.Is(err, cnst.ErrDuplicateKey) {
			return nil, nil, err
		}
		// a fresh tenant id or slug cannot fix a username taken meanwhile
		if usernameTaken {
			return nil, nil, errorx.ConflictError("user", "username", username)
		}
		if attempt == registerAttempts {
			if taken, _ := s.store.SlugExists(ctx, slug); taken {
				return nil, nil, errorx.ConflictError("company", "slug", slug)
			}
			return nil, nil, errorx.ConflictError("company", "tenantId", tenantID)
		}
		s.logger.Warn("registration collided, retrying", zap.String("tenant_id", tenantID), zap.Int("attempt", attempt))
	}
}

func (s *Service) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := Slugify(name)
	if base == "" {
		base = "company"
	}
	slug := base
	for n := 2; ; n++ {
		exists, err := s.store.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = base + "-" + strconv.Itoa(n)
	}
}

// Slugify lowercases name and joins its alphanumeric runs with dashes
func Slugify(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, "-")
}
