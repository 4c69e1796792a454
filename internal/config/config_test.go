package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(16<<20), cfg.Server.MaxBodyBytes)
	assert.True(t, cfg.Security.EnableCORS)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "Chez Blos", cfg.Export.BrandName)
	assert.Empty(t, cfg.Export.LogoPath)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "negative read timeout",
			mutate:  func(c *Config) { c.Server.ReadTimeout = -time.Second },
			wantErr: "read timeout",
		},
		{
			name:    "zero body limit",
			mutate:  func(c *Config) { c.Server.MaxBodyBytes = 0 },
			wantErr: "max body bytes",
		},
		{
			name:    "no allowed origins",
			mutate:  func(c *Config) { c.Security.AllowedOrigins = nil },
			wantErr: "allowed origin",
		},
		{
			name:    "empty brand name",
			mutate:  func(c *Config) { c.Export.BrandName = "" },
			wantErr: "brand name",
		},
		{
			name:    "unknown logging format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "invalid logging format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
server:
  port: 9090
export:
  brand_name: "Chez Blos Test"
  logo_path: "assets/logo.png"
logging:
  level: debug
  format: text
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := loadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "Chez Blos Test", cfg.Export.BrandName)
	assert.Equal(t, "assets/logo.png", cfg.Export.LogoPath)
	assert.Equal(t, "text", cfg.Logging.Format)
	// Untouched sections keep their defaults.
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
	assert.True(t, cfg.Security.RateLimit.Enabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CHEZBLOS_SERVER_PORT", "7070")
	t.Setenv("CHEZBLOS_EXPORT_BRAND_NAME", "Chez Blos Staging")
	t.Setenv("CHEZBLOS_SECURITY_RATE_LIMIT_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "Chez Blos Staging", cfg.Export.BrandName)
	assert.False(t, cfg.Security.RateLimit.Enabled)
}
