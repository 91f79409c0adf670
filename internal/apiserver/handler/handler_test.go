package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dairyline/distributor/internal/apiserver/cache"
	"github.com/dairyline/distributor/internal/apiserver/database"
	"github.com/dairyline/distributor/internal/auth/jwt"
	"github.com/dairyline/distributor/internal/common/cnst"
	"github.com/dairyline/distributor/internal/common/config"
	"github.com/dairyline/distributor/internal/common/errorx"
	"github.com/dairyline/distributor/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	superUser = "root"
	superPass = "root-password"
)

type testServer struct {
	t      *testing.T
	db     *database.DB
	router *gin.Engine
	cache  *cache.CompanyCache
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.New(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.APIServerConfig{
		Server:     config.ServerConfig{Mode: gin.TestMode},
		JWT:        config.JWTConfig{SecretKey: "this-is-a-very-long-secret-key-for-testing", Duration: time.Hour},
		SuperAdmin: config.SuperAdminConfig{Username: superUser, Password: superPass},
		Tenant:     config.TenantConfig{TrialDays: 30},
		Metrics:    config.MetricsConfig{Enabled: true, Path: "/metrics", Namespace: "distributor"},
	}
	require.NoError(t, database.InitSuperAdmin(context.Background(), db, &cfg.SuperAdmin))

	jwtSvc, err := jwt.NewService(cfg.JWT)
	require.NoError(t, err)

	lg := zap.NewNop()
	companies := cache.NewCompanyCache(db, cache.NewMultiLayerCache(cache.MultiLayerCacheConfig{TTL: time.Minute}, lg), lg)
	r := NewRouter(Deps{
		DB:        db,
		Companies: companies,
		Cache:     companies,
		JWT:       jwtSvc,
		Errors:    errorx.NewErrorHandler(lg, nil),
		Metrics:   metrics.New(cfg.Metrics),
		Logger:    lg,
		Config:    cfg,
	})
	return &testServer{t: t, db: db, router: r, cache: companies}
}

type result struct {
	Code int
	Body map[string]any
	Raw  string
}

// Data returns the success payload as an object
func (r result) Data() map[string]any {
	m, _ := r.Body["data"].(map[string]any)
	return m
}

func (s *testServer) do(method, path, token, tenantID string, body any) result {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if tenantID != "" {
		req.Header.Set(cnst.HeaderTenantID, tenantID)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	res := result{Code: w.Code, Raw: w.Body.String()}
	_ = json.Unmarshal(w.Body.Bytes(), &res.Body)
	return res
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()
	res := s.do(http.MethodPost, "/api/auth/login", "", "", map[string]string{"username": username, "password": password})
	require.Equal(s.t, http.StatusOK, res.Code, res.Raw)
	return res.Data()["token"].(string)
}

// register creates a company and returns its tenant id and the admin's token
func (s *testServer) register(name, username string) (string, string) {
	s.t.Helper()
	res := s.do(http.MethodPost, "/api/companies/register", "", "", map[string]string{
		"name": name, "adminUsername": username, "adminPassword": "password-" + username,
	})
	require.Equal(s.t, http.StatusCreated, res.Code, res.Raw)
	return res.Data()["tenantId"].(string), s.login(username, "password-"+username)
}

func (s *testServer) superToken() string {
	return s.login(superUser, superPass)
}

func dec(t *testing.T, v any) decimal.Decimal {
	t.Helper()
	switch x := v.(type) {
	case string:
		return decimal.RequireFromString(x)
	case float64:
		return decimal.NewFromFloat(x)
	}
	t.Fatalf("not a number: %#v", v)
	return decimal.Zero
}

func assertDec(t *testing.T, want string, got any) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(dec(t, got)), "want %s got %v", want, got)
}

func path(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
