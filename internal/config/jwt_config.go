package config

import "time"

type JWTConfig interface {
	GetAccessTokenSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenSecret() string
	GetRefreshTokenExpiry() time.Duration
}

type JWT struct {
	AccessSecret  string   `env:"JWT_SECRET"`
	AccessExpiry  Duration `env:"JWT_EXPIRATION" envDefault:"15m"`
	RefreshSecret string   `env:"JWT_REFRESH_SECRET"`
	RefreshExpiry Duration `env:"JWT_REFRESH_EXPIRATION" envDefault:"7d"`
}

var _ JWTConfig = JWT{}

func (j JWT) GetAccessTokenSecret() string {
	return j.AccessSecret
}

func (j JWT) GetAccessTokenExpiry() time.Duration {
	return j.AccessExpiry.Std()
}

func (j JWT) GetRefreshTokenSecret() string {
	return j.RefreshSecret
}

func (j JWT) GetRefreshTokenExpiry() time.Duration {
	return j.RefreshExpiry.Std()
}

func (j JWT) validate() error {
	switch {
	case j.AccessSecret == "":
		return invalid("JWT_SECRET is required")
	case j.RefreshSecret == "":
		return invalid("JWT_REFRESH_SECRET is required")
	case j.AccessSecret == j.RefreshSecret:
		return invalid("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	case j.AccessExpiry <= 0:
		return invalid("JWT_EXPIRATION must be positive")
	case j.RefreshExpiry <= 0:
		return invalid("JWT_REFRESH_EXPIRATION must be positive")
	}
	return nil
}
