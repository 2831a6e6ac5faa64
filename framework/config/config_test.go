package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-inject/framework/config"
)

// ── Load ─────────────────────────────────────────────────────────────────────

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_NAME", "APP_ENV", "APP_PORT", "LOG_LEVEL", "INJECT_VALUES_FILE"} {
		t.Setenv(k, "")
	}
	cfg := config.Load("testdata/empty.env")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"App.Name", cfg.App.Name, "GoInject"},
		{"App.Env", cfg.App.Env, "local"},
		{"App.Port", cfg.App.Port, "8000"},
		{"Log.Level", cfg.Log.Level, ""},
		{"ValuesFile", cfg.ValuesFile, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("APP_NAME", "MyApp")
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("INJECT_VALUES_FILE", "values.yaml")

	cfg := config.Load("testdata/empty.env")

	assert.Equal(t, "MyApp", cfg.App.Name)
	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "values.yaml", cfg.ValuesFile)
}

func TestLoad_EnvFile(t *testing.T) {
	t.Setenv("APP_NAME", "")
	t.Setenv("LOG_LEVEL", "")
	// godotenv does not override variables that are already set
	os.Unsetenv("APP_NAME")
	os.Unsetenv("LOG_LEVEL")

	cfg := config.Load("testdata/app.env")

	assert.Equal(t, "FromFile", cfg.App.Name)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_AppDebug(t *testing.T) {
	t.Setenv("APP_DEBUG", "false")
	assert.False(t, config.Load("testdata/empty.env").App.Debug)

	t.Setenv("APP_DEBUG", "true")
	assert.True(t, config.Load("testdata/empty.env").App.Debug)
}

// ── LoadValues ───────────────────────────────────────────────────────────────

func TestLoadValues_FlattensNestedKeys(t *testing.T) {
	values, err := config.LoadValues("testdata/values.yaml")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"greeting":  "hello",
		"answer":    42,
		"mail.host": "smtp.example.com",
		"mail.port": 587,
	}, values)
}

func TestLoadValues_EmptyPath(t *testing.T) {
	values, err := config.LoadValues("")
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestLoadValues_Errors(t *testing.T) {
	_, err := config.LoadValues("testdata/missing.yaml")
	assert.Error(t, err)

	_, err = config.LoadValues("testdata/broken.yaml")
	assert.Error(t, err)
}

// ── Get / GetInt / GetBool ───────────────────────────────────────────────────

func TestGet(t *testing.T) {
	t.Setenv("CUSTOM_KEY", "hello")
	assert.Equal(t, "hello", config.Get("CUSTOM_KEY", "default"))
	assert.Equal(t, "fallback", config.Get("MISSING_KEY_FOR_TEST", "fallback"))
}

func TestGetInt(t *testing.T) {
	t.Setenv("SOME_INT", "42")
	assert.Equal(t, 42, config.GetInt("SOME_INT", 0))

	t.Setenv("SOME_INT", "notanint")
	assert.Equal(t, 99, config.GetInt("SOME_INT", 99))
}

func TestGetBool(t *testing.T) {
	for _, val := range []string{"true", "1", "True", "TRUE"} {
		t.Setenv("BOOL_KEY", val)
		assert.True(t, config.GetBool("BOOL_KEY", false), val)
	}

	t.Setenv("BOOL_KEY", "false")
	assert.False(t, config.GetBool("BOOL_KEY", true))

	t.Setenv("BOOL_KEY", "notabool")
	assert.True(t, config.GetBool("BOOL_KEY", true))
}
