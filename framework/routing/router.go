package routing

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/km-arc/go-inject/framework/container"
	gohttp "github.com/km-arc/go-inject/framework/http"
	"github.com/km-arc/go-inject/framework/logging"
)

// Router wraps chi.Router and opens a container scope for every request.
type Router struct {
	mux   chi.Router
	app   *container.Container
	debug bool
}

// Option configures a Router.
type Option func(*Router)

// WithDebug exposes resolution error messages in responses.
func WithDebug(debug bool) Option {
	return func(r *Router) { r.debug = debug }
}

// New creates a Router with request ids, request logging, panic recovery and
// a request scope derived from app.
func New(app *container.Container, opts ...Option) *Router {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(logging.Requests(app.Logger()))
	mux.Use(middleware.Recoverer)
	mux.Use(gohttp.Scope(app))

	r := &Router{mux: mux, app: app}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) with(mux chi.Router) *Router {
	return &Router{mux: mux, app: r.app, debug: r.debug}
}

// ── HTTP verbs ───────────────────────────────────────────────────────────────

func (r *Router) Get(pattern string, h http.HandlerFunc)    { r.mux.Get(pattern, h) }
func (r *Router) Post(pattern string, h http.HandlerFunc)   { r.mux.Post(pattern, h) }
func (r *Router) Put(pattern string, h http.HandlerFunc)    { r.mux.Put(pattern, h) }
func (r *Router) Patch(pattern string, h http.HandlerFunc)  { r.mux.Patch(pattern, h) }
func (r *Router) Delete(pattern string, h http.HandlerFunc) { r.mux.Delete(pattern, h) }

// ── Groups & Prefixes ────────────────────────────────────────────────────────

// Group creates an inline group sharing the parent's prefix.
func (r *Router) Group(fn func(r *Router)) {
	r.mux.Group(func(mx chi.Router) {
		fn(r.with(mx))
	})
}

// Prefix creates a sub-router mounted at pattern.
func (r *Router) Prefix(pattern string, fn func(r *Router)) {
	r.mux.Route(pattern, func(mx chi.Router) {
		fn(r.with(mx))
	})
}

// Middleware adds one or more middleware to the router.
func (r *Router) Middleware(mw ...func(http.Handler) http.Handler) {
	r.mux.Use(mw...)
}

// ── Injected handlers ─────────────────────────────────────────────────────────

// Inject returns a handler that resolves cls in the request scope and calls
// member with the ResponseWriter and Request at positions 0 and 1. Further
// parameters of member are injected from the scope.
//
//	r.Get("/greet", r.Inject(GreeterClass, "Greet"))
func (r *Router) Inject(cls *container.Class, member string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		scope := gohttp.FromRequest(req)
		if scope == nil {
			scope = r.app.CreateChild()
		}

		target, err := scope.GetWrappedInstance(cls)
		if err == nil && target == nil {
			gohttp.NewResponse(w).NotFound()
			return
		}
		if err == nil {
			_, err = scope.InjectExecute(target, member, w, req)
		}
		if err != nil {
			scope.Logger().Error("injected handler failed",
				zap.String("class", cls.String()),
				zap.String("member", member),
				zap.Error(err),
			)
			gohttp.NewResponse(w).Fail(err, r.debug)
		}
	}
}

// ResourceMembers are the members Resource routes to.
var ResourceMembers = [...]string{"Index", "Store", "Show", "Update", "Destroy"}

// Resource registers the RESTful routes of a controller class. Members the
// class does not declare are skipped.
//
//	GET    /photos           → Index
//	POST   /photos           → Store
//	GET    /photos/{id}      → Show
//	PUT    /photos/{id}      → Update
//	DELETE /photos/{id}      → Destroy
func (r *Router) Resource(pattern string, cls *container.Class) {
	has := cls.HasMethod
	if has("Index") {
		r.mux.Get(pattern, r.Inject(cls, "Index"))
	}
	if has("Store") {
		r.mux.Post(pattern, r.Inject(cls, "Store"))
	}
	if has("Show") {
		r.mux.Get(pattern+"/{id}", r.Inject(cls, "Show"))
	}
	if has("Update") {
		r.mux.Put(pattern+"/{id}", r.Inject(cls, "Update"))
		r.mux.Patch(pattern+"/{id}", r.Inject(cls, "Update"))
	}
	if has("Destroy") {
		r.mux.Delete(pattern+"/{id}", r.Inject(cls, "Destroy"))
	}
}

// ── Params ───────────────────────────────────────────────────────────────────

// Param extracts a URL param.
func Param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// ── Serve ────────────────────────────────────────────────────────────────────

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handler returns the underlying http.Handler.
func (r *Router) Handler() http.Handler {
	return r.mux
}
