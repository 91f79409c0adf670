package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/dairyline/distributor/internal/apiserver/database"
	"github.com/dairyline/distributor/internal/common/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	tenantID, _ := s.register("Fresh Dairy", "alice")

	t.Run("token carries tenant", func(t *testing.T) {
		res := s.do(http.MethodPost, "/api/auth/login", "", "", map[string]string{"username": "alice", "password": "password-alice"})
		require.Equal(t, http.StatusOK, res.Code, res.Raw)
		user := res.Data()["user"].(map[string]any)
		assert.Equal(t, tenantID, user["tenantId"])
		assert.Equal(t, "admin", user["role"])
		assert.NotEmpty(t, res.Data()["token"])
	})

	t.Run("wrong password", func(t *testing.T) {
		res := s.do(http.MethodPost, "/api/auth/login", "", "", map[string]string{"username": "alice", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, res.Code)
		assert.Equal(t, errorx.ErrInvalidCredentials.Code, res.Body["code"])
	})

	t.Run("unknown user", func(t *testing.T) {
		res := s.do(http.MethodPost, "/api/auth/login", "", "", map[string]string{"username": "ghost", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, res.Code)
		assert.Equal(t, errorx.ErrInvalidCredentials.Code, res.Body["code"])
	})

	t.Run("missing fields", func(t *testing.T) {
		res := s.do(http.MethodPost, "/api/auth/login", "", "", map[string]string{"username": "alice"})
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, false, res.Body["success"])
	})

	t.Run("disabled user", func(t *testing.T) {
		require.NoError(t, s.db.Conn(context.Background()).Model(&database.User{}).
			Where("username = ?", "alice").Update("is_active", false).Error)
		res := s.do(http.MethodPost, "/api/auth/login", "", "", map[string]string{"username": "alice", "password": "password-alice"})
		assert.Equal(t, http.StatusForbidden, res.Code)
		assert.Equal(t, errorx.ErrUserDisabled.Code, res.Body["code"])
	})
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)

	first, _ := s.register("Fresh Dairy", "alice")
	second, _ := s.register("Fresh Dairy", "bob")
	assert.Equal(t, "001", first)
	assert.Equal(t, "002", second)

	res := s.do(http.MethodPost, "/api/companies/register", "", "", map[string]string{
		"name": "Other", "adminUsername": "alice", "adminPassword": "long-enough",
	})
	assert.Equal(t, http.StatusConflict, res.Code, res.Raw)

	res = s.do(http.MethodPost, "/api/companies/register", "", "", map[string]string{
		"name": "Short", "adminUsername": "carol", "adminPassword": "short",
	})
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestCompanyMeAndUsage(t *testing.T) {
	s := newTestServer(t)
	tenantID, token := s.register("Fresh Dairy", "alice")

	res := s.do(http.MethodGet, "/api/companies/me", token, "", nil)
	require.Equal(t, http.StatusOK, res.Code, res.Raw)
	assert.Equal(t, tenantID, res.Data()["tenantId"])
	assert.Equal(t, "fresh-dairy", res.Data()["slug"])

	res = s.do(http.MethodPost, "/api/dealers", token, "", map[string]any{"code": "D1", "name": "One"})
	require.Equal(t, http.StatusCreated, res.Code, res.Raw)

	res = s.do(http.MethodGet, "/api/companies/me/usage", token, "", nil)
	require.Equal(t, http.StatusOK, res.Code, res.Raw)
	data := res.Data()
	assert.Equal(t, "trial", data["plan"])
	assert.EqualValues(t, 30, data["daysRemaining"])

	usage := data["usage"].(map[string]any)
	dealers := usage["dealers"].(map[string]any)
	assert.EqualValues(t, 1, dealers["used"])
	assert.EqualValues(t, 10, dealers["limit"])
	users := usage["users"].(map[string]any)
	assert.EqualValues(t, 1, users["used"])
}

func TestTenantResolutionOnRoutes(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.register("Alpha", "alice")
	bravo, _ := s.register("Bravo", "bob")
	root := s.superToken()

	t.Run("no token", func(t *testing.T) {
		res := s.do(http.MethodGet, "/api/dealers", "", "", nil)
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("cross tenant header", func(t *testing.T) {
		res := s.do(http.MethodGet, "/api/dealers", aliceToken, bravo, nil)
		assert.Equal(t, http.StatusForbidden, res.Code)
		assert.Equal(t, errorx.ErrCrossTenantAccess.Code, res.Body["code"])
	})

	t.Run("super admin needs a tenant", func(t *testing.T) {
		res := s.do(http.MethodGet, "/api/dealers", root, "", nil)
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, errorx.ErrTenantIDRequired.Code, res.Body["code"])
	})

	t.Run("super admin unknown tenant", func(t *testing.T) {
		res := s.do(http.MethodGet, "/api/dealers", root, "999", nil)
		assert.Equal(t, http.StatusNotFound, res.Code)
		assert.Equal(t, errorx.ErrCompanyNotFound.Code, res.Body["code"])
	})

	t.Run("super admin any tenant", func(t *testing.T) {
		res := s.do(http.MethodGet, "/api/companies/me", root, " "+strings.ToLower(bravo)+" ", nil)
		require.Equal(t, http.StatusOK, res.Code, res.Raw)
		assert.Equal(t, bravo, res.Data()["tenantId"])
	})
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	s.register("Alpha", "alice")

	res := s.do(http.MethodGet, "/health", "", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "ok", res.Body["status"])

	res = s.do(http.MethodGet, "/metrics", "", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Raw, "distributor_tenant_id_allocations_total")
	assert.Contains(t, res.Raw, `distributor_http_requests_total{method="POST",route="/api/companies/register",status="201"}`)
}
