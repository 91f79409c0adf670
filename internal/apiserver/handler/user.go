package handler

import (
	"github.com/dairyline/distributor/internal/apiserver/database"
	"github.com/dairyline/distributor/internal/common/errorx"
	"github.com/dairyline/distributor/internal/repository"
	"github.com/dairyline/distributor/internal/tenant"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// User serves user lookups
type User struct {
	base
}

// NewUser creates a User handler
func NewUser(db *database.DB, errs *errorx.ErrorHandler, logger *zap.Logger) *User {
	return &User{base: base{db: db, errs: errs, logger: logger.Named("handler.user")}}
}

// Lookup finds a user by username. Super admins search every tenant when no
// tenant was supplied; everyone else only sees their resolved tenant.
func (h *User) Lookup(c *gin.Context) {
	username := c.Param("username")
	actor := tenant.ActorFromGin(c)
	tc := tenant.FromGin(c)

	var (
		repo *repository.Repository
		err  error
	)
	switch {
	case tc.Resolved():
		repo, err = repository.ForTenant(h.db, tc)
	case actor.IsSuperAdmin():
		repo, err = repository.Unscoped(h.db, actor)
	default:
		err = errorx.ErrTenantIDRequired
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	user, err := repo.FindUser(c.Request.Context(), username)
	if err != nil {
		h.fail(c, notFound(err, "user", username))
		return
	}
	ok(c, userInfo(user))
}
