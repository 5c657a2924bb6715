package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onlinestore/onlinestore/internal/auth"
)

const validSecret = "0123456789abcdef0123456789abcdef"

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", validSecret)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 5, cfg.LoginMaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.LoginLockoutWindow)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 3600, cfg.CORSMaxAge)
	assert.False(t, cfg.TrustProxyHeaders)
	assert.Equal(t, auth.RolePolicyFallback, cfg.RolePolicy())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", validSecret)
	t.Setenv("JWT_TTL", "1h")
	t.Setenv("SIGNUP_ROLE_POLICY", "reject")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example,https://admin.example")
	t.Setenv("APP_ENV", "production")
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, auth.RolePolicyReject, cfg.RolePolicy())
	assert.Equal(t, []string{"https://shop.example", "https://admin.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.TrustProxyHeaders)
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing secret", env: map[string]string{"JWT_SECRET": ""}},
		{name: "short secret", env: map[string]string{"JWT_SECRET": "too-short"}},
		{name: "bad role policy", env: map[string]string{"JWT_SECRET": validSecret, "SIGNUP_ROLE_POLICY": "ignore"}},
		{name: "bad log level", env: map[string]string{"JWT_SECRET": validSecret, "LOG_LEVEL": "verbose"}},
		{name: "zero ttl", env: map[string]string{"JWT_SECRET": validSecret, "JWT_TTL": "0s"}},
		{name: "zero lockout window", env: map[string]string{"JWT_SECRET": validSecret, "LOGIN_LOCKOUT_WINDOW": "0s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
