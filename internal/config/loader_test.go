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
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigFromFile_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
database:
  path: `+filepath.Join(dir, "db", "app.db")+`
jwt:
  secret_key: secret
admin:
  password: pw
`)

	cfg, err := loadConfigFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:18080", cfg.Server.GetAddress())
	assert.Equal(t, "http://backend:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Backend.GetPredictTimeout())
	assert.Equal(t, 5*time.Second, cfg.Backend.GetHealthTimeout())
	assert.Equal(t, 0, cfg.Backend.MaxRetries)
	assert.Equal(t, int64(64<<20), cfg.Backend.GetMaxResponseBytes())
	assert.Equal(t, "xgb_model", cfg.Export.ModelVersion)
	assert.Equal(t, int64(50<<20), cfg.Upload.MaxBytes())
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "HS256", cfg.JWT.Algorithm)

	_, err = os.Stat(filepath.Join(dir, "db"))
	assert.NoError(t, err, "database directory should be created")
}

func TestLoadConfigFromFile_Overrides(t *testing.T) {
	path := writeConfig(t, `
database:
  path: ":memory:"
jwt:
  secret_key: secret
admin:
  password: pw
redis_service:
  host: redis
backend:
  base_url: http://scoring:9000
  predict_timeout: 10
  max_retries: 2
export:
  model_version: rf_v2
`)

	cfg, err := loadConfigFromFile(path)
	require.NoError(t, err)

	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "redis:6379", cfg.Redis.GetAddress())
	assert.Equal(t, "http://scoring:9000", cfg.Backend.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Backend.GetPredictTimeout())
	assert.Equal(t, 2, cfg.Backend.MaxRetries)
	assert.Equal(t, "rf_v2", cfg.Export.ModelVersion)
}

func TestLoadConfigFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing jwt secret", "database:\n  path: \":memory:\"\nadmin:\n  password: pw\n"},
		{"missing admin password", "database:\n  path: \":memory:\"\njwt:\n  secret_key: s\n"},
		{"bad backend url", "database:\n  path: \":memory:\"\njwt:\n  secret_key: s\nadmin:\n  password: pw\nbackend:\n  base_url: not-a-url\n"},
		{"too many retries", "database:\n  path: \":memory:\"\njwt:\n  secret_key: s\nadmin:\n  password: pw\nbackend:\n  max_retries: 9\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfigFromFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigFromFile_MissingFile(t *testing.T) {
	_, err := loadConfigFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
