package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
api:
  base_url: "http://api.local/fakeApi"
  timeout: 3s
session:
  max_age: 2h
log:
  level: debug
`), 0o600))

	t.Setenv("POSTBOARD_API_URL", "http://override/fakeApi")
	t.Setenv("POSTBOARD_RATE_BURST", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "http://override/fakeApi", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2*time.Hour, cfg.Session.MaxAge)
	assert.Equal(t, 7, cfg.RateLimit.Burst)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10*time.Minute, cfg.Session.CleanupInterval, "unset keys keep defaults")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read config file")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		edit func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"empty api", func(c *Config) { c.API.BaseURL = "" }},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }},
		{"zero max age", func(c *Config) { c.Session.MaxAge = 0 }},
		{"zero cleanup", func(c *Config) { c.Session.CleanupInterval = 0 }},
		{"zero burst", func(c *Config) { c.RateLimit.Burst = 0 }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.edit(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
