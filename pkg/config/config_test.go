package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, "environment: test\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "http://localhost:8000", c.Upstream.BaseURL)
	assert.Zero(t, c.Upstream.Timeout)
	assert.False(t, c.Upstream.StrictDecode)
	assert.Equal(t, AuditNone, c.Audit.Backend)
	assert.Equal(t, "en-US", c.Display.Locale)
	assert.Equal(t, 2*time.Second, c.Audit.FlushInterval)
	assert.True(t, c.Metrics.Enabled)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, `
environment: prod
upstream:
  base_url: https://analytics.internal
  timeout: 15s
  strict_decode: true
audit:
  backend: clickhouse
clickhouse:
  host: ch.internal
  table: dashboard_fetches
`))
	require.NoError(t, err)

	assert.Equal(t, "https://analytics.internal", c.Upstream.BaseURL)
	assert.Equal(t, 15*time.Second, c.Upstream.Timeout)
	assert.True(t, c.Upstream.StrictDecode)
	assert.Equal(t, "dashboard_fetches", c.ClickHouse.Table)
	assert.Equal(t, 9000, c.ClickHouse.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing environment", "upstream:\n  base_url: http://x\n", "environment is required"},
		{"relative base url", "environment: t\nupstream:\n  base_url: /api\n", "upstream.base_url"},
		{"unknown backend", "environment: t\naudit:\n  backend: redis\n", "audit.backend must be"},
		{"kafka without brokers", "environment: t\naudit:\n  backend: kafka\n", "kafka.brokers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	c, err := Parse([]byte("environment: dev\n"))
	require.NoError(t, err)

	env := map[string]string{
		"PORT":               "9090",
		"ANALYTICS_BASE_URL": "http://analytics:8000",
		"AUDIT_BACKEND":      "kafka",
		"KAFKA_BROKERS":      "k1:9092,k2:9092",
		"DISPLAY_LOCALE":     "de-DE",
	}
	require.NoError(t, c.applyEnv(func(k string) string { return env[k] }))
	require.NoError(t, c.Validate())

	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, "http://analytics:8000", c.Upstream.BaseURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "de-DE", c.Display.Locale)

	assert.Error(t, c.applyEnv(func(k string) string {
		if k == "PORT" {
			return "http"
		}
		return ""
	}))
}
