package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_CONFIG", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, DriverRedis, cfg.StoreDriver)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.False(t, cfg.PurgeChildrenOnDelete)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.IsDevelopment())
	assert.Empty(t, cfg.EventBusName)
	assert.False(t, cfg.EnableCloudWatch)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("APP_CONFIG", "")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("PURGE_CHILDREN_ON_DELETE", "yes")
	t.Setenv("REQUEST_TIMEOUT", "5")
	t.Setenv("REDIS_READ_TIMEOUT", "250ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("EVENT_BUS_NAME", "flowy-events")
	t.Setenv("ENABLE_CLOUDWATCH_METRICS", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.True(t, cfg.PurgeChildrenOnDelete)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.RedisReadTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "flowy-events", cfg.EventBusName)
	assert.True(t, cfg.EnableCloudWatch)
	assert.Equal(t, "Flowy/Gateway", cfg.MetricsNamespace)
}

func TestLoadConfigFileOverlay(t *testing.T) {
	path := writeFile(t, t.TempDir(), `
store_driver: dynamodb
dynamodb_table: nodes
log_level: debug
request_timeout: 2s
`)
	t.Setenv("APP_CONFIG", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverDynamoDB, cfg.StoreDriver)
	assert.Equal(t, "nodes", cfg.DynamoDBTable)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "warn", cfg.LogLevel, "environment wins over the file")
	assert.Equal(t, ":8080", cfg.ServerAddress, "unset keys keep defaults")
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("APP_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unknown driver", func(c *Config) { c.StoreDriver = "etcd" }, true},
		{"redis without url", func(c *Config) { c.RedisURL = "" }, true},
		{"memory without url", func(c *Config) { c.StoreDriver = DriverMemory; c.RedisURL = "" }, false},
		{"dynamodb without table", func(c *Config) { c.StoreDriver = DriverDynamoDB; c.DynamoDBTable = "" }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"tracing without endpoint", func(c *Config) { c.EnableTracing = true; c.OTLPEndpoint = "" }, true},
		{"cloudwatch without namespace", func(c *Config) { c.EnableCloudWatch = true; c.MetricsNamespace = "" }, true},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, true},
		{"no origins", func(c *Config) { c.CORSAllowedOrigins = nil }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReloadRejectsInvalidFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "store_driver: [not, a, string]\n")

	_, err := Reload(path)
	assert.Error(t, err)
}

func TestBaseConfigFileLoads(t *testing.T) {
	cfg, err := Reload(filepath.Join("..", "..", "config", "base.yaml"))
	require.NoError(t, err)

	defaults := Default()
	assert.Equal(t, defaults.RequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, defaults.MaxRequestSize, cfg.MaxRequestSize)
	assert.Equal(t, defaults.RedisDialTimeout, cfg.RedisDialTimeout)
	assert.Equal(t, defaults.MetricsNamespace, cfg.MetricsNamespace)
	assert.Equal(t, defaults.CORSAllowedOrigins, cfg.CORSAllowedOrigins)
	assert.Equal(t, defaults.EnableBreaker, cfg.EnableBreaker)
}
