// Package handler implements the HTTP API of the distributor backend.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dairyline/distributor/internal/apiserver/database"
	"github.com/dairyline/distributor/internal/common/cnst"
	"github.com/dairyline/distributor/internal/common/dto"
	"github.com/dairyline/distributor/internal/common/errorx"
	"github.com/dairyline/distributor/internal/repository"
	"github.com/dairyline/distributor/internal/tenant"
	"github.com/dairyline/distributor/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// base carries what every handler needs
type base struct {
	db     *database.DB
	errs   *errorx.ErrorHandler
	logger *zap.Logger
}

func (b *base) fail(c *gin.Context, err error) {
	b.errs.HandleError(c, err)
}

// log returns the request-scoped logger
func (b *base) log(c *gin.Context) *zap.Logger {
	return logger.FromContext(c.Request.Context(), b.logger)
}

// repo binds a repository to the tenant RequireTenant attached
func (b *base) repo(c *gin.Context) (*repository.Repository, error) {
	return repository.ForTenant(b.db, tenant.FromGin(c))
}

// bind decodes the JSON body into req and maps decoding failures to a validation error
func bind(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return errorx.ErrInvalidInput.WithMessage("%s", err.Error())
	}
	return nil
}

func bindQuery(c *gin.Context, req any) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return errorx.ErrInvalidInput.WithMessage("%s", err.Error())
	}
	return nil
}

func idParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errorx.ValidationError(name, "must be a positive integer")
	}
	return uint(id), nil
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.OK(data))
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.OK(data))
}

// actorID is the user id recorded on created rows, 0 when unauthenticated
func actorID(c *gin.Context) uint {
	if a := tenant.ActorFromGin(c); a != nil {
		return a.UserID
	}
	return 0
}

// notFound maps a repository miss onto a named not found error
func notFound(err error, resource string, id any) error {
	if errors.Is(err, cnst.ErrNotFound) {
		return errorx.NotFoundError(resource, id)
	}
	return err
}

func userInfo(u *database.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Role:     u.Role,
		TenantID: u.TenantID,
		IsActive: u.IsActive,
	}
}
