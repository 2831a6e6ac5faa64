package modules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/modules"
	"github.com/km-arc/go-inject/framework/routing"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "test", Env: "testing", Port: "0"},
		Log: config.LogConfig{Level: "error"},
	}
}

// ── ConfigModule ──────────────────────────────────────────────────────────────

func TestConfigModule_RegistersConfigAndValues(t *testing.T) {
	cfg := testConfig()
	cfg.ValuesFile = "../config/testdata/values.yaml"

	c := container.New()
	require.NoError(t, (&modules.ConfigModule{Config: cfg}).Register(c))

	got := container.MustResolve[*config.Config](c, modules.ConfigKey)
	assert.Same(t, cfg, got)
	assert.Equal(t, "smtp.example.com", container.MustResolve[string](c, "mail.host"))
	assert.Equal(t, 42, container.MustResolve[int](c, "answer"))
	assert.False(t, c.CanWrap(modules.ConfigKey))
}

func TestConfigModule_BadValuesFile(t *testing.T) {
	cfg := testConfig()
	cfg.ValuesFile = "../config/testdata/broken.yaml"

	err := (&modules.ConfigModule{Config: cfg}).Register(container.New())
	assert.Error(t, err)
}

// ── LoggingModule ─────────────────────────────────────────────────────────────

func TestLoggingModule_BuildsFromConfig(t *testing.T) {
	c := container.New()
	require.NoError(t, (&modules.ConfigModule{Config: testConfig()}).Register(c))
	require.NoError(t, (&modules.LoggingModule{}).Register(c))

	l, err := container.Resolve[*zap.Logger](c, modules.LoggerKey)
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.False(t, l.Core().Enabled(zap.WarnLevel))
	assert.Same(t, l, container.MustResolve[*zap.Logger](c.CreateChild(), modules.LoggerKey))
}

func TestLoggingModule_RequiresConfig(t *testing.T) {
	c := container.New()
	require.NoError(t, (&modules.LoggingModule{}).Register(c))

	_, err := c.GetInstance(modules.LoggerKey)
	assert.ErrorIs(t, err, container.ErrRequiredDependency)
}

func TestLoggingModule_GivenLogger(t *testing.T) {
	c := container.New()
	l := zap.NewNop()
	require.NoError(t, (&modules.LoggingModule{Logger: l}).Register(c))
	assert.Same(t, l, container.MustResolve[*zap.Logger](c, modules.LoggerKey))
}

// ── RoutingModule ─────────────────────────────────────────────────────────────

func TestRoutingModule_Deferred(t *testing.T) {
	c := container.New()
	reg := container.NewModuleRegistry(c)
	require.NoError(t, reg.Register(&modules.ConfigModule{Config: testConfig()}))
	require.NoError(t, reg.Register(&modules.RoutingModule{}))
	require.NoError(t, reg.Boot())

	assert.Len(t, reg.Modules(), 1, "routing is deferred")

	r, err := container.Resolve[*routing.Router](c, modules.RouterKey)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Same(t, r, container.MustResolve[*routing.Router](c, modules.RouterKey))
}
