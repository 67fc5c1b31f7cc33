package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	apperrors "github.com/jrsteele09/go-identity-server/internal/errors"
	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	JWTConfig
	SessionConfig
	StoreConfig
	CorsConfig
	Validate() error
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	IsDev() bool
}

type CorsConfig interface {
	GetAllowedOrigins() []string
}

type mainConfig struct {
	EnvVars
	JWT
	Sessions
	Stores
	Cors
}

var _ Config = (*mainConfig)(nil)

// New parses the process environment into a validated Config.
func New() (Config, error) {
	c := &mainConfig{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("%w: parse env: %w", apperrors.ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads the given dotenv files (missing files are skipped) and then calls New.
// Variables already present in the environment win over file values.
func Load(files ...string) (Config, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return nil, fmt.Errorf("%w: load %v: %w", apperrors.ErrInvalidConfig, existing, err)
		}
	}
	return New()
}

func (c *mainConfig) Validate() error {
	if err := c.JWT.validate(); err != nil {
		return err
	}
	if err := c.Sessions.validate(); err != nil {
		return err
	}
	return c.Stores.validate()
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperrors.ErrInvalidConfig, fmt.Sprintf(format, args...))
}
