package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-identity-server/internal/config"
	fakeuserrepo "github.com/jrsteele09/go-identity-server/users/repofake"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func loadConfig(t *testing.T, env map[string]string) config.Config {
	t.Helper()

	t.Setenv("JWT_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
	for k, v := range env {
		t.Setenv(k, v)
	}
	cfg, err := config.New()
	require.NoError(t, err)
	return cfg
}

func TestSeedUser(t *testing.T) {
	ctx := context.Background()
	cfg := loadConfig(t, map[string]string{
		"ENV":                "DEV",
		"SEED_USER_EMAIL":    "Admin@Example.com",
		"SEED_USER_PASSWORD": "Passw0rd!",
	})
	repo := fakeuserrepo.NewFakeUserRepo()

	require.NoError(t, seedUser(ctx, cfg, repo, zerolog.Nop()))
	first, err := repo.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)

	require.NoError(t, seedUser(ctx, cfg, repo, zerolog.Nop()), "seeding twice keeps the first user")
	again, err := repo.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)
}

func TestSeedUser_SkippedOutsideDev(t *testing.T) {
	ctx := context.Background()
	cfg := loadConfig(t, map[string]string{
		"ENV":                "PROD",
		"SEED_USER_EMAIL":    "admin@example.com",
		"SEED_USER_PASSWORD": "Passw0rd!",
	})
	repo := fakeuserrepo.NewFakeUserRepo()

	require.NoError(t, seedUser(ctx, cfg, repo, zerolog.Nop()))
	_, err := repo.GetByEmail(ctx, "admin@example.com")
	require.Error(t, err)
}

func TestNewApp_RedisSessionStore(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := loadConfig(t, map[string]string{
		"ENV":                "DEV",
		"SESSION_STORE":      "redis",
		"REDIS_ADDR":         mr.Addr(),
		"SEED_USER_EMAIL":    "admin@example.com",
		"SEED_USER_PASSWORD": "Passw0rd!",
	})

	a, err := newApp(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"admin@example.com","password":"Passw0rd!"}`))
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, mr.Keys(), 2, "session list and side record")

	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "session_store")
}
