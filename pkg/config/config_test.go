package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 1, cfg.RateLimit.Calls)
	assert.Equal(t, 2*time.Second, cfg.RateLimit.Period)
	assert.Equal(t, StrategyWindow, cfg.RateLimit.Strategy)
	assert.Equal(t, "./saved_categories", cfg.Output.Directory)
	assert.Equal(t, FormatCSV, cfg.Output.Format)
	assert.Equal(t, "fetched_level_%d", cfg.Output.FilePattern)
	assert.Empty(t, cfg.Output.AggregateFile)
	assert.Equal(t, 10, cfg.Traversal.MaxDepth)
	assert.Equal(t, []string{"0"}, cfg.Traversal.RootIDs)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FRED_API_KEY", "fallback-key")
	t.Setenv("FREDCAT_API_KEY", "primary-key")
	t.Setenv("FREDCAT_BASE_URL", "http://localhost:9999/fred")
	t.Setenv("FREDCAT_TIMEOUT", "5s")
	t.Setenv("FREDCAT_RATE_LIMIT_CALLS", "3")
	t.Setenv("FREDCAT_RATE_LIMIT_PERIOD", "1m")
	t.Setenv("FREDCAT_RATE_LIMIT_STRATEGY", "LEAKY")
	t.Setenv("FREDCAT_OUTPUT_DIR", "/tmp/cats")
	t.Setenv("FREDCAT_OUTPUT_FORMAT", "parquet")
	t.Setenv("FREDCAT_AGGREGATE_FILE", "all.csv")
	t.Setenv("FREDCAT_MAX_DEPTH", "4")
	t.Setenv("FREDCAT_ROOT_IDS", "0, 32991 ,,10")
	t.Setenv("FREDCAT_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "primary-key", cfg.API.Key)
	assert.Equal(t, "http://localhost:9999/fred", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 3, cfg.RateLimit.Calls)
	assert.Equal(t, time.Minute, cfg.RateLimit.Period)
	assert.Equal(t, StrategyLeaky, cfg.RateLimit.Strategy)
	assert.Equal(t, "/tmp/cats", cfg.Output.Directory)
	assert.Equal(t, FormatParquet, cfg.Output.Format)
	assert.Equal(t, "all.csv", cfg.Output.AggregateFile)
	assert.Equal(t, 4, cfg.Traversal.MaxDepth)
	assert.Equal(t, []string{"0", "32991", "10"}, cfg.Traversal.RootIDs)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvFredKeyOnly(t *testing.T) {
	t.Setenv("FRED_API_KEY", "fallback-key")
	t.Setenv("FREDCAT_API_KEY", "")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())
	assert.Equal(t, "fallback-key", cfg.API.Key)
}

func TestLoadFromEnvMalformed(t *testing.T) {
	t.Setenv("FREDCAT_RATE_LIMIT_PERIOD", "two seconds")
	t.Setenv("FREDCAT_MAX_DEPTH", "ten")

	cfg := DefaultConfig()
	err := cfg.LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FREDCAT_RATE_LIMIT_PERIOD")
	assert.Contains(t, err.Error(), "FREDCAT_MAX_DEPTH")
	assert.Equal(t, 10, cfg.Traversal.MaxDepth)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
api:
  base_url: http://example.test/fred
  timeout: 10s
rate_limit:
  calls: 2
  period: 5s
output:
  directory: ./out
  format: parquet
traversal:
  max_depth: 3
  root_ids: ["18"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "http://example.test/fred", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2, cfg.RateLimit.Calls)
	assert.Equal(t, 5*time.Second, cfg.RateLimit.Period)
	assert.Equal(t, StrategyWindow, cfg.RateLimit.Strategy)
	assert.Equal(t, "./out", cfg.Output.Directory)
	assert.Equal(t, FormatParquet, cfg.Output.Format)
	assert.Equal(t, 3, cfg.Traversal.MaxDepth)
	assert.Equal(t, []string{"18"}, cfg.Traversal.RootIDs)
}

func TestLoadFromFileErrors(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("rate_limit: [unclosed"), 0644))
	assert.Error(t, cfg.LoadFromFile(bad))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero calls", func(c *Config) { c.RateLimit.Calls = 0 }, "rate limit calls"},
		{"zero period", func(c *Config) { c.RateLimit.Period = 0 }, "rate limit period"},
		{"bad strategy", func(c *Config) { c.RateLimit.Strategy = "bucket" }, "strategy"},
		{"no directory", func(c *Config) { c.Output.Directory = "" }, "output directory"},
		{"bad format", func(c *Config) { c.Output.Format = "xlsx" }, "output format"},
		{"bad pattern", func(c *Config) { c.Output.FilePattern = "level" }, "file pattern"},
		{"zero depth", func(c *Config) { c.Traversal.MaxDepth = 0 }, "max depth"},
		{"no roots", func(c *Config) { c.Traversal.RootIDs = nil }, "root category"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit.Calls = 0
	cfg.Traversal.MaxDepth = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit calls")
	assert.Contains(t, err.Error(), "max depth")
}

func TestRequireAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.RequireAPIKey())

	cfg.API.Key = "   "
	assert.Error(t, cfg.RequireAPIKey())

	cfg.API.Key = "abc123"
	assert.NoError(t, cfg.RequireAPIKey())
}

func TestSaveOmitsKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.API.Key = "secret-key"
	cfg.Output.Format = FormatParquet

	require.NoError(t, cfg.Save(path))
	assert.Equal(t, "secret-key", cfg.API.Key)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret-key")

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, FormatParquet, loaded.Output.Format)
	assert.Equal(t, 2*time.Second, loaded.RateLimit.Period)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: warn\ntraversal:\n  max_depth: 2\n"), 0644))

	t.Setenv("HOME", dir)
	t.Setenv("FREDCAT_MAX_DEPTH", "5")
	t.Setenv("FREDCAT_LOG_LEVEL", "error")

	cfg, err := Load(path, Overrides{LogLevel: "debug"})
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Traversal.MaxDepth)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FREDCAT_OUTPUT_FORMAT", "xml")

	_, err := Load("", Overrides{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output format")
}
