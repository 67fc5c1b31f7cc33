package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-identity-server/internal/config"
	apperrors "github.com/jrsteele09/go-identity-server/internal/errors"
	"github.com/stretchr/testify/require"
)

func setSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
}

func TestNew_Defaults(t *testing.T) {
	setSecrets(t)

	c, err := config.New()
	require.NoError(t, err)
	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.True(t, c.IsDev())
	require.Equal(t, 15*time.Minute, c.GetAccessTokenExpiry())
	require.Equal(t, 7*24*time.Hour, c.GetRefreshTokenExpiry())
	require.Equal(t, 5, c.GetMaxSessionsPerUser())
	require.Equal(t, "x-refresh-token", c.GetRefreshTokenHeader())
	require.True(t, c.GetRefreshRotation())
	require.Equal(t, config.SessionStoreMemory, c.GetSessionStore())
	require.Empty(t, c.GetDatabaseURL())
}

func TestNew_Overrides(t *testing.T) {
	setSecrets(t)
	t.Setenv("PORT", ":9000")
	t.Setenv("JWT_EXPIRATION", "5m")
	t.Setenv("JWT_REFRESH_EXPIRATION", "1.5d")
	t.Setenv("MAX_SESSIONS_PER_USER", "3")
	t.Setenv("REFRESH_TOKEN_HEADER", "x-session-token")
	t.Setenv("REFRESH_ROTATION", "false")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	c, err := config.New()
	require.NoError(t, err)
	require.Equal(t, ":9000", c.GetPort())
	require.Equal(t, 5*time.Minute, c.GetAccessTokenExpiry())
	require.Equal(t, 36*time.Hour, c.GetRefreshTokenExpiry())
	require.Equal(t, 3, c.GetMaxSessionsPerUser())
	require.Equal(t, "x-session-token", c.GetRefreshTokenHeader())
	require.False(t, c.GetRefreshRotation())
	require.Equal(t, "localhost:6379", c.GetRedisAddr())
	require.Equal(t, []string{"https://a.example", "https://b.example"}, c.GetAllowedOrigins())
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing access secret", env: map[string]string{"JWT_SECRET": ""}},
		{name: "missing refresh secret", env: map[string]string{"JWT_REFRESH_SECRET": ""}},
		{name: "same secrets", env: map[string]string{"JWT_REFRESH_SECRET": "access-secret"}},
		{name: "zero sessions", env: map[string]string{"MAX_SESSIONS_PER_USER": "0"}},
		{name: "bad duration", env: map[string]string{"JWT_EXPIRATION": "soon"}},
		{name: "redis without addr", env: map[string]string{"SESSION_STORE": "redis"}},
		{name: "unknown store", env: map[string]string{"SESSION_STORE": "etcd"}},
		{name: "half seed user", env: map[string]string{"SEED_USER_EMAIL": "a@b.c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setSecrets(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.New()
			require.Error(t, err)
			require.ErrorIs(t, err, apperrors.ErrInvalidConfig)
		})
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("APP_NAME=from-file\n"), 0o600))
	setSecrets(t)
	t.Setenv("APP_NAME", "")
	require.NoError(t, os.Unsetenv("APP_NAME"))

	c, err := config.Load(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "from-file", c.GetAppName())
	require.NoError(t, os.Unsetenv("APP_NAME"))
}
