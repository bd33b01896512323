package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		WorkspacePath: ".",
		Command:       CommandValidate,
		WorkerCount:   1,
		ExportFormat:  "hcl",
	}
}

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing workspace", mutate: func(c *Config) { c.WorkspacePath = "" }, wantErr: "WorkspacePath is a required"},
		{name: "unknown command", mutate: func(c *Config) { c.Command = "deploy" }, wantErr: `unknown command "deploy"`},
		{name: "too many args", mutate: func(c *Config) { c.Args = []string{":a"} }, wantErr: "takes no arguments, got 1"},
		{name: "deps needs a label", mutate: func(c *Config) { c.Command = CommandDeps }, wantErr: "takes exactly 1 argument(s), got 0"},
		{name: "order takes an optional label", mutate: func(c *Config) { c.Command = CommandOrder; c.Args = []string{":a", ":b"} }, wantErr: "takes between 0 and 1 arguments, got 2"},
		{name: "build takes any labels", mutate: func(c *Config) { c.Command = CommandBuild; c.Args = []string{":a", ":b", ":c"} }},
		{name: "zero workers", mutate: func(c *Config) { c.WorkerCount = 0 }, wantErr: "workers must be at least 1"},
		{name: "bad export format", mutate: func(c *Config) { c.ExportFormat = "yaml" }, wantErr: "yaml"},
		{name: "events without timeout", mutate: func(c *Config) { c.EventsURL = "http://localhost:3000" }, wantErr: "events timeout must be positive"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)

			got, err := NewConfig(cfg)

			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, cfg, *got)
		})
	}
}

func TestLoadEnvConfig_Defaults(t *testing.T) {
	cfg, err := LoadEnvConfig(filepath.Join(t.TempDir(), "absent.env"))

	require.NoError(t, err)
	assert.Equal(t, ".", cfg.WorkspacePath)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, "hcl", cfg.ExportFormat)
	assert.Equal(t, 5*time.Second, cfg.EventsTimeout)
	assert.Equal(t, 4096, cfg.HashCacheSize)
	assert.Empty(t, cfg.EventsURL)
}

func TestLoadEnvConfig_EnvironmentAndDotenv(t *testing.T) {
	// --- Arrange ---
	dotenv := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("BUILDGRID_WORKERS=7\nBUILDGRID_LOG_FORMAT=json\n"), 0o600))
	t.Setenv("BUILDGRID_LOG_FORMAT", "text")
	t.Setenv("BUILDGRID_WORKSPACE", "/srv/workspace")
	t.Setenv("BUILDGRID_EVENTS_TIMEOUT", "250ms")
	t.Cleanup(func() { os.Unsetenv("BUILDGRID_WORKERS") })

	// --- Act ---
	cfg, err := LoadEnvConfig(dotenv)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.WorkerCount)
	assert.Equal(t, "text", cfg.LogFormat, "variables already set win over the dotenv file")
	assert.Equal(t, "/srv/workspace", cfg.WorkspacePath)
	assert.Equal(t, 250*time.Millisecond, cfg.EventsTimeout)
}

func TestLoadEnvConfig_InvalidValue(t *testing.T) {
	t.Setenv("BUILDGRID_WORKERS", "many")

	_, err := LoadEnvConfig(filepath.Join(t.TempDir(), "absent.env"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}
