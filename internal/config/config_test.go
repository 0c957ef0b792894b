package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoadSuiteConfig_Defaults(t *testing.T) {
	cfg, err := LoadSuiteConfig(envOf(nil))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/", cfg.BaseURL)
	assert.True(t, cfg.Headless)
	assert.Equal(t, "fashion@example.com", cfg.DemoUser)
	assert.Equal(t, "sylius", cfg.DemoPass)
	assert.Equal(t, 10*time.Second, cfg.Policy().Timeout)
	assert.Len(t, cfg.Policy().Intervals, 4)
	assert.False(t, cfg.WaitLog)
}

func TestLoadSuiteConfig_Overrides(t *testing.T) {
	cfg, err := LoadSuiteConfig(envOf(map[string]string{
		"BASE_URL":       "https://shop.example.com/en_US",
		"HEADLESS":       "false",
		"POLL_TIMEOUT":   "3s",
		"POLL_INTERVALS": "50,250",
		"ACTION_TIMEOUT": "5s",
		"WAIT_LOG":       "true",
		"DEMO_USER":      "qa@example.com",
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com/en_US/", cfg.BaseURL)
	assert.False(t, cfg.Headless)
	assert.True(t, cfg.WaitLog)
	assert.Equal(t, "qa@example.com", cfg.DemoUser)
	assert.Equal(t, 5*time.Second, cfg.ActionTimeout)
	assert.Equal(t, []time.Duration{50 * time.Millisecond, 250 * time.Millisecond}, cfg.Policy().Intervals)
	assert.Equal(t, 3*time.Second, cfg.Policy().Timeout)
}

func TestLoadSuiteConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "relative base url", env: map[string]string{"BASE_URL": "/en_US"}},
		{name: "bad headless", env: map[string]string{"HEADLESS": "maybe"}},
		{name: "bad timeout", env: map[string]string{"POLL_TIMEOUT": "soon"}},
		{name: "zero timeout", env: map[string]string{"POLL_TIMEOUT": "0s"}},
		{name: "bad intervals", env: map[string]string{"POLL_INTERVALS": "fast"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSuiteConfig(envOf(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestLoadServerConfig(t *testing.T) {
	cfg, err := LoadServerConfig(envOf(nil))
	require.NoError(t, err)
	assert.Equal(t, ServerConfig{Port: "8080", Theme: "current", RenderDelay: 150 * time.Millisecond}, cfg)

	cfg, err = LoadServerConfig(envOf(map[string]string{"PORT": "0", "FIXTURE_THEME": "legacy", "FIXTURE_RENDER_DELAY": "0s"}))
	require.NoError(t, err)
	assert.Equal(t, "legacy", cfg.Theme)
	assert.Zero(t, cfg.RenderDelay)

	cfg, err = LoadServerConfig(envOf(map[string]string{"FIXTURE_FLAKY_ADD": "true"}))
	require.NoError(t, err)
	assert.True(t, cfg.FlakyAdd)

	_, err = LoadServerConfig(envOf(map[string]string{"FIXTURE_THEME": "brutalist"}))
	assert.Error(t, err)

	_, err = LoadServerConfig(envOf(map[string]string{"FIXTURE_FLAKY_ADD": "sometimes"}))
	assert.Error(t, err)
}

func TestLoadPostgresConfig(t *testing.T) {
	full := map[string]string{
		"POSTGRES_USER":     "u",
		"POSTGRES_PASSWORD": "p",
		"POSTGRES_DB":       "waits",
		"POSTGRES_HOSTNAME": "db",
	}
	cfg, err := LoadPostgresConfig(envOf(full))
	require.NoError(t, err)
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=waits sslmode=disable", cfg.ConnectionString())

	for _, missing := range []string{"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB", "POSTGRES_HOSTNAME"} {
		t.Run(missing, func(t *testing.T) {
			env := map[string]string{}
			for k, v := range full {
				if k != missing {
					env[k] = v
				}
			}
			_, err := LoadPostgresConfig(envOf(env))
			assert.ErrorContains(t, err, missing)
		})
	}
}

func TestLoadLogConfig(t *testing.T) {
	cfg, err := LoadLogConfig(envOf(nil))
	require.NoError(t, err)
	assert.Equal(t, LogConfig{Level: "info", Format: "console"}, cfg)

	_, err = LoadLogConfig(envOf(map[string]string{"LOG_FORMAT": "xml"}))
	assert.Error(t, err)
}
