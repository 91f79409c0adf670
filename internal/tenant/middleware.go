package tenant

import (
	"bytes"
	"io"
	"strings"

	"github.com/dairyline/distributor/internal/common/cnst"
	"github.com/dairyline/distributor/internal/common/errorx"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

const maxBodyPeek = 1 << 20

// Middleware exposes the resolver to gin routes
type Middleware struct {
	resolver *Resolver
	errs     *errorx.ErrorHandler
}

// NewMiddleware creates the tenant middlewares
func NewMiddleware(resolver *Resolver, errs *errorx.ErrorHandler) *Middleware {
	return &Middleware{resolver: resolver, errs: errs}
}

// RequireTenant rejects requests whose tenant cannot be resolved
func (m *Middleware) RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc, err := m.resolver.Resolve(c.Request.Context(), SourcesFromGin(c))
		if err != nil {
			m.errs.HandleError(c, err)
			return
		}
		SetContext(c, tc)
		c.Next()
	}
}

// OptionalTenant attaches a none context instead of rejecting, except for an
// inactive subscription
func (m *Middleware) OptionalTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc, err := m.resolver.ResolveOptional(c.Request.Context(), SourcesFromGin(c))
		if err != nil {
			m.errs.HandleError(c, err)
			return
		}
		SetContext(c, tc)
		c.Next()
	}
}

// CheckTenantAccess runs after RequireTenant and rejects cross-tenant actors
func (m *Middleware) CheckTenantAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := CheckAccess(ActorFromGin(c), FromGin(c)); err != nil {
			m.errs.HandleError(c, err)
			return
		}
		c.Next()
	}
}

// SourcesFromGin collects the identifier candidates of a request. The body
// is peeked and restored so handlers can still bind it.
func SourcesFromGin(c *gin.Context) Sources {
	return Sources{
		Header: c.GetHeader(cnst.HeaderTenantID),
		Query:  c.Query(cnst.QueryTenantID),
		Body:   bodyTenantID(c),
		Actor:  ActorFromGin(c),
	}
}

func bodyTenantID(c *gin.Context) string {
	if c.Request.Body == nil || !strings.Contains(c.ContentType(), "json") {
		return ""
	}
	body := c.Request.Body
	raw, err := io.ReadAll(io.LimitReader(body, maxBodyPeek))
	c.Request.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(raw), body), Closer: body}
	if err != nil || !gjson.ValidBytes(raw) {
		return ""
	}
	return gjson.GetBytes(raw, cnst.BodyTenantID).String()
}

type readCloser struct {
	io.Reader
	io.Closer
}

// SetActor attaches the authenticated actor
func SetActor(c *gin.Context, actor *Actor) {
	c.Set(cnst.CtxKeyActor, actor)
}

// ActorFromGin returns the authenticated actor or nil
func ActorFromGin(c *gin.Context) *Actor {
	if v, ok := c.Get(cnst.CtxKeyActor); ok {
		if actor, ok := v.(*Actor); ok {
			return actor
		}
	}
	return nil
}

// SetContext attaches tc and its filter to the request
func SetContext(c *gin.Context, tc *Context) {
	c.Set(cnst.CtxKeyTenant, tc)
	c.Set(cnst.CtxKeyTenantFilter, tc.Filter)
}

// FromGin returns the attached tenant context or nil
func FromGin(c *gin.Context) *Context {
	if v, ok := c.Get(cnst.CtxKeyTenant); ok {
		if tc, ok := v.(*Context); ok {
			return tc
		}
	}
	return nil
}
