package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jrsteele09/go-identity-server/auth"
	"github.com/jrsteele09/go-identity-server/internal/config"
	apperrors "github.com/jrsteele09/go-identity-server/internal/errors"
	"github.com/jrsteele09/go-identity-server/internal/metrics"
	"github.com/jrsteele09/go-identity-server/server"
	"github.com/jrsteele09/go-identity-server/sessions"
	"github.com/jrsteele09/go-identity-server/sessions/redisrepo"
	fakesessionrepo "github.com/jrsteele09/go-identity-server/sessions/repofakes"
	"github.com/jrsteele09/go-identity-server/token"
	"github.com/jrsteele09/go-identity-server/users"
	"github.com/jrsteele09/go-identity-server/users/postgresrepo"
	fakeuserrepo "github.com/jrsteele09/go-identity-server/users/repofake"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// app is the composed service: stores, issuer, authority and HTTP handler.
type app struct {
	handler http.Handler
	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg config.Config, logger zerolog.Logger) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	var health []server.HealthCheck

	registry, registryHealth, err := a.sessionRegistry(cfg)
	if err != nil {
		return nil, err
	}
	if registryHealth != nil {
		health = append(health, *registryHealth)
	}

	userRepo, userHealth, err := a.userRepo(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if userHealth != nil {
		health = append(health, *userHealth)
	}

	if err := seedUser(ctx, cfg, userRepo, logger); err != nil {
		return nil, err
	}

	accessSigner, err := token.NewHMACSigner(cfg.GetAccessTokenSecret())
	if err != nil {
		return nil, fmt.Errorf("access signer: %w", err)
	}
	refreshSigner, err := token.NewHMACSigner(cfg.GetRefreshTokenSecret())
	if err != nil {
		return nil, fmt.Errorf("refresh signer: %w", err)
	}
	issuer, err := token.NewIssuer(accessSigner, refreshSigner,
		token.WithTokenExpiry(cfg.GetAccessTokenExpiry(), cfg.GetRefreshTokenExpiry()))
	if err != nil {
		return nil, err
	}

	authenticator, err := users.NewAuthenticator(userRepo)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	authority, err := auth.NewSessionAuthority(auth.Repos{
		Credentials: authenticator,
		Principals:  authenticator,
		Sessions:    registry,
	}, issuer,
		auth.WithLogger(logger),
		auth.WithMetrics(m),
		auth.WithRefreshRotation(cfg.GetRefreshRotation()),
	)
	if err != nil {
		return nil, err
	}

	srv, err := server.New(cfg, server.Dependencies{
		Authority: authority,
		Issuer:    issuer,
		Users:     userRepo,
		Metrics:   m,
		Logger:    logger,
		Health:    health,
	})
	if err != nil {
		return nil, err
	}
	a.handler = srv

	logger.Info().
		Str("env", cfg.GetEnv()).
		Str("session_store", cfg.GetSessionStore()).
		Int("max_sessions", cfg.GetMaxSessionsPerUser()).
		Bool("refresh_rotation", cfg.GetRefreshRotation()).
		Msg("service composed")
	return a, nil
}

func (a *app) sessionRegistry(cfg config.Config) (sessions.Registry, *server.HealthCheck, error) {
	if cfg.GetSessionStore() != config.SessionStoreRedis {
		repo, err := fakesessionrepo.NewFakeSessionRepo(cfg.GetMaxSessionsPerUser())
		return repo, nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.GetRedisPassword(),
		DB:       cfg.GetRedisDB(),
	})
	a.closers = append(a.closers, client.Close)

	repo, err := redisrepo.New(client, cfg.GetMaxSessionsPerUser(),
		redisrepo.WithSessionTTL(cfg.GetRefreshTokenExpiry()))
	if err != nil {
		return nil, nil, err
	}
	return repo, &server.HealthCheck{Name: "session_store", Check: repo.Ping}, nil
}

func (a *app) userRepo(ctx context.Context, cfg config.Config) (users.UserRepo, *server.HealthCheck, error) {
	if cfg.GetDatabaseURL() == "" {
		return fakeuserrepo.NewFakeUserRepo(), nil, nil
	}

	db, err := postgresrepo.Open(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return nil, nil, err
	}
	a.closers = append(a.closers, db.Close)

	repo, err := postgresrepo.New(db)
	if err != nil {
		return nil, nil, err
	}
	if err := repo.InitSchema(ctx); err != nil {
		return nil, nil, err
	}
	return repo, &server.HealthCheck{Name: "user_store", Check: repo.Ping}, nil
}

// seedUser creates the configured DEV user when it does not exist yet.
func seedUser(ctx context.Context, cfg config.Config, repo users.UserRepo, logger zerolog.Logger) error {
	email, password := cfg.GetSeedUser()
	if email == "" || !cfg.IsDev() {
		return nil
	}

	_, err := repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, apperrors.ErrNotFound):
		return fmt.Errorf("seed user lookup: %w", err)
	}

	if err := users.ValidatePasswordStrength(password); err != nil {
		logger.Warn().Err(err).Msg("seed user password is weak")
	}
	user, err := users.NewUser(email, password, "", "", time.Now().UTC())
	if err != nil {
		return err
	}
	if err := repo.Upsert(ctx, user); err != nil {
		return fmt.Errorf("seed user: %w", err)
	}
	logger.Info().Str("email", user.Email).Str("subject_id", user.ID).Msg("seed user created")
	return nil
}
