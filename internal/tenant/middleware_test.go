package tenant

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dairyline/distributor/internal/apiserver/database"
	"github.com/dairyline/distributor/internal/common/cnst"
	"github.com/dairyline/distributor/internal/common/errorx"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(actor *Actor, companies ...*database.Company) (*gin.Engine, *Middleware, *Gate) {
	gin.SetMode(gin.TestMode)
	r, _ := newTestResolver(companies...)
	errs := errorx.NewErrorHandler(zap.NewNop(), nil)
	m := NewMiddleware(r, errs)
	g := NewGate(errs, nil)

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		if actor != nil {
			SetActor(c, actor)
		}
		c.Next()
	})
	return engine, m, g
}

func echoTenant(c *gin.Context) {
	tc := FromGin(c)
	body, _ := io.ReadAll(c.Request.Body)
	filter, _ := c.Get(cnst.CtxKeyTenantFilter)
	c.JSON(http.StatusOK, gin.H{"id": tc.ID, "none": tc.None, "filter": filter, "body": string(body)})
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRequireTenant_FromBodyKeepsBody(t *testing.T) {
	engine, m, _ := newTestRouter(&Actor{TenantID: "001"}, activeCompany("001"), activeCompany("002"))
	engine.POST("/x", m.RequireTenant(), echoTenant)

	payload := `{"tenantId":"002","name":"x"}`
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, "002", out["id"])
	assert.Equal(t, payload, out["body"])
	assert.Equal(t, map[string]any{"tenant_id": "002"}, out["filter"])
}

func TestRequireTenant_FallsBackToActor(t *testing.T) {
	engine, m, _ := newTestRouter(&Actor{TenantID: "001"}, activeCompany("001"))
	engine.GET("/x", m.RequireTenant(), echoTenant)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "001", decode(t, w)["id"])
}

func TestRequireTenant_MissingID(t *testing.T) {
	engine, m, _ := newTestRouter(nil)
	engine.GET("/x", m.RequireTenant(), echoTenant)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	out := decode(t, w)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Tenant ID is required", out["message"])
}

func TestRequireTenant_UnknownCompany(t *testing.T) {
	engine, m, _ := newTestRouter(nil)
	engine.GET("/x", m.RequireTenant(), echoTenant)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x?tenantId=042", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Company not found or suspended", decode(t, w)["message"])
}

func TestRequireTenant_SuspendedAndLapsed(t *testing.T) {
	yesterday := testNow.AddDate(0, 0, -1)
	c := activeCompany("001")
	c.IsSuspended = true
	c.Subscription.EndDate = &yesterday
	engine, m, _ := newTestRouter(&Actor{TenantID: "001"}, c)
	engine.GET("/strict", m.RequireTenant(), echoTenant)
	engine.GET("/optional", m.OptionalTenant(), echoTenant)

	for _, path := range []string{"/strict", "/optional"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path+"?tenantId=001", nil))
		assert.Equal(t, http.StatusForbidden, w.Code, path)
		out := decode(t, w)
		assert.Equal(t, errorx.ErrSubscriptionInactive.Code, out["code"], path)
		assert.EqualValues(t, 0, out["daysRemaining"], path)
	}
}

func TestCheckTenantAccess_Middleware(t *testing.T) {
	engine, m, _ := newTestRouter(&Actor{TenantID: "001"}, activeCompany("001"), activeCompany("002"))
	engine.GET("/x", m.RequireTenant(), m.CheckTenantAccess(), echoTenant)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(cnst.HeaderTenantID, "002")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(cnst.HeaderTenantID, "001")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOptionalTenant_SuperAdminWithoutID(t *testing.T) {
	engine, m, _ := newTestRouter(&Actor{Role: cnst.RoleSuperAdmin})
	engine.GET("/x", m.OptionalTenant(), echoTenant)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, true, out["none"])
	assert.Equal(t, map[string]any{}, out["filter"])
}

func TestGate_RequireFeature(t *testing.T) {
	c := activeCompany("001")
	engine, m, g := newTestRouter(&Actor{TenantID: "001"}, c)
	engine.GET("/dealers", m.RequireTenant(), g.RequireFeature(FeatureDealers), echoTenant)
	engine.GET("/reports", m.RequireTenant(), g.RequireFeature(FeatureReports), echoTenant)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dealers", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	out := decode(t, w)
	assert.Equal(t, errorx.ErrFeatureUnavailable.Code, out["code"])
	assert.Equal(t, FeatureReports, out["feature"])
}

func TestGate_EnforceLimit(t *testing.T) {
	c := activeCompany("001")
	c.Subscription.MaxDealers = 3
	engine, m, g := newTestRouter(&Actor{TenantID: "001"}, c)

	var current int64
	counter := func(*gin.Context, *Context) (int64, error) { return current, nil }
	engine.POST("/dealers", m.RequireTenant(), g.EnforceLimit(KindDealers, counter), echoTenant)

	current = 2
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/dealers", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	current = 3
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/dealers", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	out := decode(t, w)
	assert.Equal(t, errorx.ErrLimitExceeded.Code, out["code"])
	assert.EqualValues(t, 3, out["current"])
	assert.EqualValues(t, 3, out["limit"])
	assert.EqualValues(t, 1, out["requested"])
}
