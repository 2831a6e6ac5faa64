// Package modules holds the framework modules every application registers.
package modules

import (
	"go.uber.org/zap"

	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/logging"
	"github.com/km-arc/go-inject/framework/routing"
)

// Keys registered by the framework modules.
const (
	ConfigKey = "config"
	LoggerKey = "logger"
	RouterKey = "router"
)

// ── ConfigModule ──────────────────────────────────────────────────────────────

// ConfigModule registers the configuration and the entries of its values
// file.
//
// Registered keys:
//   - "config" → *config.Config
//   - every flattened key of Config.ValuesFile, e.g. "mail.host"
type ConfigModule struct {
	container.BaseModule

	// Config is used as is when set; otherwise it is loaded from EnvFiles.
	Config   *config.Config
	EnvFiles []string
}

func (m *ConfigModule) Register(c *container.Container) error {
	cfg := m.Config
	if cfg == nil {
		cfg = config.Load(m.EnvFiles...)
	}
	c.RegisterInstance(ConfigKey, cfg)
	c.DoNotWrap(ConfigKey)

	values, err := config.LoadValues(cfg.ValuesFile)
	if err != nil {
		return err
	}
	for k, v := range values {
		c.RegisterInstance(k, v)
	}
	if len(values) > 0 {
		c.Logger().Debug("values registered",
			zap.String("file", cfg.ValuesFile),
			zap.Int("count", len(values)),
		)
	}
	return nil
}

// ── LoggingModule ─────────────────────────────────────────────────────────────

// LoggingModule registers the application logger.
//
// Registered keys:
//   - "logger" → *zap.Logger
type LoggingModule struct {
	container.BaseModule

	// Logger is used as is when set; otherwise one is built from "config".
	Logger *zap.Logger
}

func (m *LoggingModule) Register(c *container.Container) error {
	if m.Logger != nil {
		c.RegisterInstance(LoggerKey, m.Logger)
		c.DoNotWrap(LoggerKey)
		return nil
	}
	return c.RegisterProvider(container.NewProvider(LoggerKey, func(args container.Args) (any, error) {
		cfg := container.Arg[*config.Config](args, 0)
		l, err := logging.New(cfg.App.Env, cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		return l, nil
	}, container.WithDependencies(container.Inject(ConfigKey).Required().NoWrap()), container.NoWrapResult()))
}

// ── RoutingModule ─────────────────────────────────────────────────────────────

// RoutingModule registers the HTTP router. It is deferred: the router is set
// up on the first resolution of "router".
//
// Registered keys:
//   - "router" → *routing.Router
type RoutingModule struct {
	container.BaseModule
}

func (m *RoutingModule) IsDeferred() bool { return true }
func (m *RoutingModule) Provides() []any  { return []any{RouterKey} }

func (m *RoutingModule) Register(c *container.Container) error {
	return c.RegisterProvider(container.NewProvider(RouterKey, func(args container.Args) (any, error) {
		var debug bool
		if cfg := container.Arg[*config.Config](args, 0); cfg != nil {
			debug = cfg.App.Debug
		}
		return routing.New(c, routing.WithDebug(debug)), nil
	}, container.WithDependencies(container.Inject(ConfigKey).NoWrap()), container.NoWrapResult()))
}
