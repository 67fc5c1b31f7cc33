package auth

import (
	"errors"
	"fmt"
)

// Errors returned by SessionAuthority. Every failure matches exactly one of them.
var (
	InvalidCredentialsErr        = errors.New("invalid credentials")
	InvalidRefreshTokenErr       = errors.New("invalid refresh token")
	InvalidSessionErr            = errors.New("invalid session")
	InfrastructureUnavailableErr = errors.New("infrastructure unavailable")
)

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, InfrastructureUnavailableErr, err)
}
