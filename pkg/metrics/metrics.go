package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dairyline/distributor/internal/common/config"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Allocation modes
const (
	AllocNumeric  = "numeric"
	AllocFallback = "fallback"
)

// Metrics holds every collector of the service. A nil *Metrics is valid and
// records nothing, which keeps components usable without a registry.
type Metrics struct {
	registry    *prometheus.Registry
	httpReqCnt  *prometheus.CounterVec
	httpDur     *prometheus.HistogramVec
	httpInfl    *prometheus.GaugeVec
	resolutions *prometheus.CounterVec
	allocations *prometheus.CounterVec
	ledgerTx    *prometheus.CounterVec
	gateDenied  *prometheus.CounterVec
}

func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "http_request_duration_seconds", Buckets: cfg.Buckets}, []string{"method", "route", "status"})
	httpInfl := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: ns, Name: "http_requests_inflight"}, []string{"route"})
	r.MustRegister(httpReqCnt, httpDur, httpInfl)

	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "tenant_resolutions_total"}, []string{"source", "outcome"})
	allocations := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "tenant_id_allocations_total"}, []string{"mode"})
	ledgerTx := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "ledger_transactions_total"}, []string{"type", "reference"})
	gateDenied := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "gate_denials_total"}, []string{"kind", "name"})
	r.MustRegister(resolutions, allocations, ledgerTx, gateDenied)

	return &Metrics{
		registry:    r,
		httpReqCnt:  httpReqCnt,
		httpDur:     httpDur,
		httpInfl:    httpInfl,
		resolutions: resolutions,
		allocations: allocations,
		ledgerTx:    ledgerTx,
		gateDenied:  gateDenied,
	}
}

// TenantResolved counts one resolution attempt
func (m *Metrics) TenantResolved(source, outcome string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(source, outcome).Inc()
}

// TenantAllocated counts one tenant id allocation
func (m *Metrics) TenantAllocated(mode string) {
	if m == nil {
		return
	}
	m.allocations.WithLabelValues(mode).Inc()
}

// LedgerTransaction counts one appended ledger row
func (m *Metrics) LedgerTransaction(txType, reference string) {
	if m == nil {
		return
	}
	if reference == "" {
		reference = "none"
	}
	m.ledgerTx.WithLabelValues(txType, reference).Inc()
}

// GateDenied counts one rejected feature or limit check
func (m *Metrics) GateDenied(kind, name string) {
	if m == nil {
		return
	}
	m.gateDenied.WithLabelValues(kind, name).Inc()
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpInfl.WithLabelValues(route).Inc()
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpInfl.WithLabelValues(route).Dec()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
