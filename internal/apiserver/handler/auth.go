package handler

import (
	"errors"

	"github.com/dairyline/distributor/internal/apiserver/database"
	"github.com/dairyline/distributor/internal/auth/jwt"
	"github.com/dairyline/distributor/internal/common/cnst"
	"github.com/dairyline/distributor/internal/common/dto"
	"github.com/dairyline/distributor/internal/common/errorx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Auth handles login
type Auth struct {
	base
	jwtService *jwt.Service
}

// NewAuth creates an Auth handler
func NewAuth(db *database.DB, jwtService *jwt.Service, errs *errorx.ErrorHandler, logger *zap.Logger) *Auth {
	return &Auth{base: base{db: db, errs: errs, logger: logger.Named("handler.auth")}, jwtService: jwtService}
}

// Login checks credentials and issues a token carrying the user's tenant
func (h *Auth) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	user, err := h.db.GetUserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, cnst.ErrNotFound) {
			err = errorx.ErrInvalidCredentials
		}
		h.fail(c, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		h.fail(c, errorx.ErrInvalidCredentials)
		return
	}
	if !user.IsActive {
		h.fail(c, errorx.ErrUserDisabled)
		return
	}

	token, err := h.jwtService.GenerateToken(jwt.Subject{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		TenantID: user.TenantID,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.log(c).Info("user logged in", zap.String("username", user.Username), zap.String("tenant_id", user.TenantID))
	ok(c, dto.LoginResponse{Token: token, User: userInfo(user)})
}
