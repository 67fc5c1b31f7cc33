package config

import "strings"

// DefaultRefreshTokenHeader is the request header carrying the refresh token
const DefaultRefreshTokenHeader = "x-refresh-token"

type SessionConfig interface {
	GetMaxSessionsPerUser() int
	GetRefreshTokenHeader() string
	GetRefreshRotation() bool
	GetSeedUser() (email, password string)
}

type Sessions struct {
	MaxSessions        int    `env:"MAX_SESSIONS_PER_USER" envDefault:"5"`
	RefreshTokenHeader string `env:"REFRESH_TOKEN_HEADER" envDefault:"x-refresh-token"`
	RefreshRotation    bool   `env:"REFRESH_ROTATION" envDefault:"true"`
	SeedUserEmail      string `env:"SEED_USER_EMAIL"`
	SeedUserPassword   string `env:"SEED_USER_PASSWORD"`
}

var _ SessionConfig = Sessions{}

func (s Sessions) GetMaxSessionsPerUser() int {
	return s.MaxSessions
}

func (s Sessions) GetRefreshTokenHeader() string {
	if h := strings.TrimSpace(s.RefreshTokenHeader); h != "" {
		return h
	}
	return DefaultRefreshTokenHeader
}

func (s Sessions) GetRefreshRotation() bool {
	return s.RefreshRotation
}

func (s Sessions) GetSeedUser() (string, string) {
	return s.SeedUserEmail, s.SeedUserPassword
}

func (s Sessions) validate() error {
	if s.MaxSessions < 1 {
		return invalid("MAX_SESSIONS_PER_USER must be >= 1, got %d", s.MaxSessions)
	}
	if (s.SeedUserEmail == "") != (s.SeedUserPassword == "") {
		return invalid("SEED_USER_EMAIL and SEED_USER_PASSWORD must be set together")
	}
	return nil
}
