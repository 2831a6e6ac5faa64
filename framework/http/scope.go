package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/km-arc/go-inject/framework/container"
)

// Keys registered in every request scope.
const (
	RequestIDKey = "request.id"
	RequestKey   = "http.request"
)

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-ID"

type scopeKey struct{}

// Scope creates a child of parent for every request. The child holds the
// request id and the *http.Request, so providers registered on parent
// resolve application-wide singletons while classes resolved through the
// child live as long as the request.
//
//	r.Use(gohttp.Scope(app.Container))
func Scope(parent *container.Container) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := requestID(r)
			scope := parent.CreateChild()
			scope.RegisterInstance(RequestIDKey, id)
			scope.RegisterInstance(RequestKey, r)

			w.Header().Set(RequestIDHeader, id)
			scope.Logger().Debug("request scope",
				zap.String("request_id", id),
				zap.String("path", r.URL.Path),
			)

			ctx := context.WithValue(r.Context(), scopeKey{}, scope)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext returns the request scope stored by Scope.
func FromContext(ctx context.Context) (*container.Container, bool) {
	c, ok := ctx.Value(scopeKey{}).(*container.Container)
	return c, ok
}

// FromRequest returns the request scope of r, or nil outside Scope.
func FromRequest(r *http.Request) *container.Container {
	c, _ := FromContext(r.Context())
	return c
}

func requestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	if id := r.Header.Get(RequestIDHeader); id != "" {
		return id
	}
	return uuid.NewString()
}
