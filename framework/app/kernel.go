package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/logging"
	"github.com/km-arc/go-inject/framework/modules"
	"github.com/km-arc/go-inject/framework/routing"
)

// Application is the top-level container. It embeds the Container and the
// ModuleRegistry so user code can call app.Singleton(), app.Register()
// directly.
type Application struct {
	*container.Container
	Modules *container.ModuleRegistry
}

// New loads the configuration, builds the logger and registers the
// framework modules.
func New(envFiles ...string) (*Application, error) {
	cfg := config.Load(envFiles...)
	logger, err := logging.New(cfg.App.Env, cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg, logger)
}

// NewWithConfig is New with a prepared configuration and logger.
func NewWithConfig(cfg *config.Config, logger *zap.Logger) (*Application, error) {
	c := container.New(container.WithLogger(logger))
	app := &Application{
		Container: c,
		Modules:   container.NewModuleRegistry(c),
	}

	for _, m := range []container.Module{
		&modules.ConfigModule{Config: cfg},
		&modules.LoggingModule{Logger: logger},
		&modules.RoutingModule{},
	} {
		if err := app.Register(m); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Register adds a module to the application.
func (a *Application) Register(m container.Module) error {
	return a.Modules.Register(m)
}

// Boot runs the Boot phase of all eager modules.
func (a *Application) Boot() error {
	return a.Modules.Boot()
}

// Config resolves *config.Config from the container.
func (a *Application) Config() *config.Config {
	return container.MustResolve[*config.Config](a.Container, modules.ConfigKey)
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() *routing.Router {
	return container.MustResolve[*routing.Router](a.Container, modules.RouterKey)
}

// Server returns the HTTP server for the application.
func (a *Application) Server() *http.Server {
	return &http.Server{
		Addr:              ":" + a.Config().App.Port,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run boots the application (if needed) and serves HTTP until ctx is done.
func (a *Application) Run(ctx context.Context) error {
	if !a.Modules.Booted() {
		if err := a.Boot(); err != nil {
			return err
		}
	}

	cfg := a.Config()
	srv := a.Server()
	log := a.Logger()

	errc := make(chan error, 1)
	go func() {
		log.Info("server started",
			zap.String("app", cfg.App.Name),
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env),
		)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config().App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.Config().App.Debug }
func (a *Application) Version() string     { return "0.1.0" }
