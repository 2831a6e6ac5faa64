package routing_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-inject/framework/container"
	gohttp "github.com/km-arc/go-inject/framework/http"
	"github.com/km-arc/go-inject/framework/routing"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func do(t *testing.T, router *routing.Router, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func newRouter(opts ...routing.Option) (*routing.Router, *container.Container) {
	app := container.New()
	return routing.New(app, opts...), app
}

// ── HTTP verbs ────────────────────────────────────────────────────────────────

func TestRouter_Verbs(t *testing.T) {
	r, _ := newRouter()
	r.Get("/hello", okHandler)
	r.Post("/users", okHandler)
	r.Put("/users/{id}", okHandler)
	r.Patch("/users/{id}", okHandler)
	r.Delete("/users/{id}", okHandler)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/hello"},
		{http.MethodPost, "/users"},
		{http.MethodPut, "/users/1"},
		{http.MethodPatch, "/users/1"},
		{http.MethodDelete, "/users/1"},
	} {
		assert.Equal(t, http.StatusOK, do(t, r, tc.method, tc.path).Code, "%s %s", tc.method, tc.path)
	}
}

func TestRouter_NotFound(t *testing.T) {
	r, _ := newRouter()
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/nope").Code)
}

func TestRouter_Param(t *testing.T) {
	r, _ := newRouter()
	var got string
	r.Get("/users/{id}", func(w http.ResponseWriter, req *http.Request) {
		got = routing.Param(req, "id")
	})

	do(t, r, http.MethodGet, "/users/42")
	assert.Equal(t, "42", got)
}

func TestRouter_Prefix(t *testing.T) {
	r, _ := newRouter()
	r.Prefix("/api/v1", func(api *routing.Router) {
		api.Get("/ping", okHandler)
	})

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/api/v1/ping").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/ping").Code)
}

func TestRouter_Group_Middleware(t *testing.T) {
	r, _ := newRouter()
	r.Group(func(g *routing.Router) {
		g.Middleware(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				if req.Header.Get("Authorization") == "" {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, req)
			})
		})
		g.Get("/profile", okHandler)
	})
	r.Get("/public", okHandler)

	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodGet, "/profile").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/public").Code)
}

// ── Request scope ─────────────────────────────────────────────────────────────

func TestRouter_RequestScope(t *testing.T) {
	r, app := newRouter()
	var scope *container.Container
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		scope = gohttp.FromRequest(req)
	})

	rr := do(t, r, http.MethodGet, "/")
	require.NotNil(t, scope)
	assert.Same(t, app, scope.Parent())

	id := container.MustResolve[string](scope, gohttp.RequestIDKey)
	assert.Equal(t, id, rr.Header().Get(gohttp.RequestIDHeader))
}

// ── Injected handlers ─────────────────────────────────────────────────────────

type greeter struct{ greeting string }

var Greeter = container.NewClass("Greeter", func(args container.Args) (*greeter, error) {
	return &greeter{greeting: container.Arg[string](args, 0)}, nil
}).
	Param(0, container.Inject("greeting").Required()).
	Method("Greet", container.MethodOf(func(g *greeter, args container.Args) (any, error) {
		w := container.Arg[http.ResponseWriter](args, 0)
		req := container.Arg[*http.Request](args, 1)
		id := container.Arg[string](args, 2)
		gohttp.NewResponse(w).Success(map[string]any{
			"message":    g.greeting + ", " + routing.Param(req, "name"),
			"request_id": id,
		})
		return nil, nil
	}), container.Inject(gohttp.RequestIDKey).At(2))

func TestRouter_Inject(t *testing.T) {
	r, app := newRouter()
	app.RegisterInstance("greeting", "hello")
	r.Get("/greet/{name}", r.Inject(Greeter, "Greet"))

	rr := do(t, r, http.MethodGet, "/greet/gopher")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "hello, gopher", body.Data["message"])
	assert.Equal(t, rr.Header().Get(gohttp.RequestIDHeader), body.Data["request_id"])
}

func TestRouter_InjectFailure(t *testing.T) {
	r, _ := newRouter(routing.WithDebug(true))
	r.Get("/greet/{name}", r.Inject(Greeter, "Greet"))
	r.Get("/missing", r.Inject(Greeter, "Missing"))

	rr := do(t, r, http.MethodGet, "/greet/gopher")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "required_dependency", body["error"])
	assert.Equal(t, "Greeter.constructor(0) inject failed, required dependency not found: expected greeting", body["message"])
}

// ── Resource ──────────────────────────────────────────────────────────────────

type photos struct{ store map[string]string }

func status(code int) container.MethodFunc {
	return func(_ any, args container.Args) (any, error) {
		container.Arg[http.ResponseWriter](args, 0).WriteHeader(code)
		return nil, nil
	}
}

var Photos = container.NewClass("Photos", func(container.Args) (*photos, error) {
	return &photos{store: map[string]string{}}, nil
}).
	Method("Index", status(http.StatusOK)).
	Method("Store", status(http.StatusCreated)).
	Method("Show", status(http.StatusOK)).
	Method("Destroy", status(http.StatusNoContent))

func TestRouter_Resource(t *testing.T) {
	r, _ := newRouter()
	r.Resource("/photos", Photos)

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/photos").Code)
	assert.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/photos").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/photos/1").Code)
	assert.Equal(t, http.StatusNoContent, do(t, r, http.MethodDelete, "/photos/1").Code)
	// Update is not declared
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, r, http.MethodPut, "/photos/1").Code)
}

func TestRouter_HandlerInterface(t *testing.T) {
	r, _ := newRouter()
	var _ http.Handler = r
	assert.NotNil(t, r.Handler())
}
