package config

import "strings"

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type StoreConfig interface {
	GetSessionStore() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetDatabaseURL() string
}

type Stores struct {
	SessionStore  string `env:"SESSION_STORE" envDefault:"memory"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	DatabaseURL   string `env:"DATABASE_URL"`
}

var _ StoreConfig = Stores{}

func (s Stores) GetSessionStore() string {
	return strings.ToLower(strings.TrimSpace(s.SessionStore))
}

func (s Stores) GetRedisAddr() string {
	return s.RedisAddr
}

func (s Stores) GetRedisPassword() string {
	return s.RedisPassword
}

func (s Stores) GetRedisDB() int {
	return s.RedisDB
}

// GetDatabaseURL returns the Postgres DSN for the user store; empty selects the in-memory store
func (s Stores) GetDatabaseURL() string {
	return s.DatabaseURL
}

func (s Stores) validate() error {
	switch s.GetSessionStore() {
	case SessionStoreMemory:
		return nil
	case SessionStoreRedis:
		if s.RedisAddr == "" {
			return invalid("REDIS_ADDR is required when SESSION_STORE=redis")
		}
		return nil
	default:
		return invalid("unknown SESSION_STORE %q", s.SessionStore)
	}
}
