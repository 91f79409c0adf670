package middleware

import (
	"strings"

	"github.com/dairyline/distributor/internal/auth/jwt"
	"github.com/dairyline/distributor/internal/common/cnst"
	"github.com/dairyline/distributor/internal/common/errorx"
	"github.com/dairyline/distributor/internal/tenant"
	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware validates the bearer token and attaches its claims and
// the derived actor to the request
func JWTAuthMiddleware(jwtService *jwt.Service, errs *errorx.ErrorHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			errs.HandleError(c, errorx.ErrUnauthorized)
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			errs.HandleError(c, errorx.ErrUnauthorized.WithMessage("%s", err.Error()))
			return
		}

		c.Set(cnst.CtxKeyClaims, claims)
		tenant.SetActor(c, &tenant.Actor{
			UserID:   claims.UserID,
			Username: claims.Username,
			Role:     claims.Role,
			TenantID: claims.TenantID,
		})
		c.Next()
	}
}

// ClaimsFromGin returns the validated claims or nil
func ClaimsFromGin(c *gin.Context) *jwt.Claims {
	if v, ok := c.Get(cnst.CtxKeyClaims); ok {
		if claims, ok := v.(*jwt.Claims); ok {
			return claims
		}
	}
	return nil
}

// RequireSuperAdmin rejects every actor except the platform super admin
func RequireSuperAdmin(errs *errorx.ErrorHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := tenant.ActorFromGin(c)
		if actor == nil {
			errs.HandleError(c, errorx.ErrUnauthorized)
			return
		}
		if !actor.IsSuperAdmin() {
			errs.HandleError(c, errorx.ErrSuperAdminOnly)
			return
		}
		c.Next()
	}
}
