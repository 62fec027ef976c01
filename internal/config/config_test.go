package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.True(t, cfg.Postgres.AutoMigrate)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 168*time.Hour, cfg.Security.RefreshTTL)
	assert.Equal(t, time.Hour, cfg.Security.ResetTokenTTL)
	assert.Equal(t, "mail:outbox", cfg.Mail.Stream)
	assert.Equal(t, 30*time.Second, cfg.Mail.ClaimInterval)
	assert.False(t, cfg.Catalog.FallbackOnUnavailable)
	assert.Equal(t, "0 0 * * * *", cfg.Jobs.ResetSweep)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MARKETPLACE_ENVIRONMENT", "production")
	t.Setenv("MARKETPLACE_STORAGE_DRIVER", "memory")
	t.Setenv("MARKETPLACE_SECURITY_JWTSECRET", "s3cret")
	t.Setenv("MARKETPLACE_SECURITY_JWTISSUER", "marketplace")
	t.Setenv("MARKETPLACE_SECURITY_JWTAUDIENCE", "marketplace-web")
	t.Setenv("MARKETPLACE_SECURITY_ACCESSTOKENEXPIRYMINUTES", "15")
	t.Setenv("MARKETPLACE_CATALOG_FALLBACKONUNAVAILABLE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.Catalog.FallbackOnUnavailable)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL())

	tc := cfg.TokenConfig()
	assert.Equal(t, "s3cret", tc.Secret)
	assert.Equal(t, "marketplace", tc.Issuer)
	assert.Equal(t, "marketplace-web", tc.Audience)
	assert.Equal(t, 15*time.Minute, tc.AccessTTL)
}

func TestValidate(t *testing.T) {
	valid := func() *AppConfig {
		return &AppConfig{
			Storage: StorageConfig{Driver: "memory"},
			Security: SecurityConfig{
				JWTSecret:                "secret",
				JWTIssuer:                "issuer",
				JWTAudience:              "audience",
				AccessTokenExpiryMinutes: 15,
				RefreshTTL:               time.Hour,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *AppConfig)
		wantErr string
	}{
		{name: "valid", mutate: func(*AppConfig) {}},
		{name: "missing secret", mutate: func(c *AppConfig) { c.Security.JWTSecret = " " }, wantErr: "security.jwtsecret"},
		{name: "missing issuer", mutate: func(c *AppConfig) { c.Security.JWTIssuer = "" }, wantErr: "security.jwtissuer"},
		{name: "missing audience", mutate: func(c *AppConfig) { c.Security.JWTAudience = "" }, wantErr: "security.jwtaudience"},
		{name: "missing expiry", mutate: func(c *AppConfig) { c.Security.AccessTokenExpiryMinutes = 0 }, wantErr: "security.accesstokenexpiryminutes"},
		{name: "postgres without dsn", mutate: func(c *AppConfig) { c.Storage.Driver = "postgres" }, wantErr: "postgres.dsn"},
		{name: "unknown driver", mutate: func(c *AppConfig) { c.Storage.Driver = "sqlite" }, wantErr: "not supported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
