package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-inject/framework/container"
	gohttp "github.com/km-arc/go-inject/framework/http"
)

type perRequest struct{ id string }

var PerRequest = container.NewClass("PerRequest", func(args container.Args) (*perRequest, error) {
	return &perRequest{id: container.Arg[string](args, 0)}, nil
}).Param(0, container.Inject(gohttp.RequestIDKey).Required())

// ── Scope ─────────────────────────────────────────────────────────────────────

func TestScope_ChildPerRequest(t *testing.T) {
	app := container.New()
	var scopes []*container.Container
	var services []*perRequest

	h := gohttp.Scope(app)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope := gohttp.FromRequest(r)
		require.NotNil(t, scope)
		svc, err := container.Resolve[*perRequest](scope, PerRequest)
		require.NoError(t, err)
		again, _ := container.Resolve[*perRequest](scope, PerRequest)
		assert.Same(t, svc, again)

		raw, _ := scope.GetInstance(gohttp.RequestKey)
		assert.Equal(t, r.URL.Path, raw.(*http.Request).URL.Path)

		scopes = append(scopes, scope)
		services = append(services, svc)
	}))

	for range 2 {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	require.Len(t, scopes, 2)
	assert.NotSame(t, scopes[0], scopes[1])
	assert.Same(t, app, scopes[0].Parent())
	assert.NotSame(t, services[0], services[1])
	assert.NotEqual(t, services[0].id, services[1].id)
	assert.False(t, app.Resolved(PerRequest))
}

func TestScope_RequestIDSources(t *testing.T) {
	app := container.New()
	var seen string
	h := gohttp.Scope(app)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = container.MustResolve[string](gohttp.FromRequest(r), gohttp.RequestIDKey)
	}))

	// incoming header
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(gohttp.RequestIDHeader, "abc-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rr.Header().Get(gohttp.RequestIDHeader))

	// chi RequestID middleware wins
	rr = httptest.NewRecorder()
	middleware.RequestID(h).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get(gohttp.RequestIDHeader))

	// generated
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
}

func TestFromContext_OutsideScope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := gohttp.FromContext(req.Context())
	assert.False(t, ok)
	assert.Nil(t, gohttp.FromRequest(req))
}
