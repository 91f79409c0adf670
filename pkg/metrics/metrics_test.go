package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dairyline/distributor/internal/common/config"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.TenantResolved("header", "ok")
		m.TenantAllocated(AllocNumeric)
		m.LedgerTransaction("debit", "")
		m.GateDenied("limit", "dealers")
	})
}

func TestCounters(t *testing.T) {
	m := New(config.MetricsConfig{Namespace: "test"})
	m.TenantAllocated(AllocNumeric)
	m.TenantAllocated(AllocFallback)
	m.TenantAllocated(AllocFallback)
	m.LedgerTransaction("debit", "")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.allocations.WithLabelValues(AllocNumeric)))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.allocations.WithLabelValues(AllocFallback)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ledgerTx.WithLabelValues("debit", "none")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(config.MetricsConfig{Namespace: "test"})

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `test_http_requests_total{method="GET",route="/ping",status="200"} 1`))
	assert.NotNil(t, m.Registry())
}
