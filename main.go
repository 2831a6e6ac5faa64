package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/km-arc/go-inject/framework/app"
	"github.com/km-arc/go-inject/framework/container"
	gohttp "github.com/km-arc/go-inject/framework/http"
	"github.com/km-arc/go-inject/framework/routing"
)

// ── Services ──────────────────────────────────────────────────────────────────

// Counter is application-wide: it is registered on the application container.
type Counter struct{ n atomic.Int64 }

var CounterClass = container.NewClass("Counter", func(container.Args) (*Counter, error) {
	return &Counter{}, nil
}).Method("Next", container.MethodOf(func(c *Counter, _ container.Args) (any, error) {
	return c.n.Add(1), nil
}))

// Visit lives as long as one request.
type Visit struct {
	RequestID string
	Counter   any
}

var VisitClass = container.NewClass("Visit", func(args container.Args) (*Visit, error) {
	return &Visit{RequestID: container.Arg[string](args, 0)}, nil
}).
	Param(0, container.Inject(gohttp.RequestIDKey).Required()).
	Property("counter", container.Inject(CounterClass), container.Setter(func(v *Visit, c any) { v.Counter = c })).
	Method("Show", container.MethodOf(func(v *Visit, args container.Args) (any, error) {
		w := container.Arg[http.ResponseWriter](args, 0)
		greeting := container.Arg[string](args, 2)

		n, err := v.Counter.(*container.Wrapped).Call("Next")
		if err != nil {
			return nil, err
		}
		gohttp.NewResponse(w).Success(map[string]any{
			"message":    greeting,
			"visit":      n,
			"request_id": v.RequestID,
		})
		return nil, nil
	}), container.Inject("greeting").At(2))

func main() {
	application, err := app.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	application.RegisterInstance("greeting", "Welcome to go-inject!")
	// cache the counter on the application container, not per request
	if _, err := application.GetInstance(CounterClass); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	r := application.Router()
	r.Get("/", r.Inject(VisitClass, "Show"))

	r.Prefix("/api/v1", func(api *routing.Router) {
		api.Get("/scope", func(w http.ResponseWriter, req *http.Request) {
			scope := gohttp.FromRequest(req)
			gohttp.NewResponse(w).Success(map[string]any{"scope": scope.FormattedID()})
		})
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
