package token

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the fixed schema of an access token payload.
// Subject, ID (jti), IssuedAt and ExpiresAt come from the registered claims.
type AccessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// RefreshClaims is the fixed schema of a refresh token payload.
type RefreshClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

var (
	_ jwt.ClaimsValidator = (*AccessClaims)(nil)
	_ jwt.ClaimsValidator = (*RefreshClaims)(nil)
)

// Validate is called by the parser once the registered claims have been checked.
func (c *AccessClaims) Validate() error {
	switch {
	case c.Subject == "":
		return errors.New("missing sub claim")
	case c.ID == "":
		return errors.New("missing jti claim")
	case c.Email == "":
		return errors.New("missing email claim")
	}
	return nil
}

func (c *RefreshClaims) Validate() error {
	switch {
	case c.Subject == "":
		return errors.New("missing sub claim")
	case c.SessionID == "":
		return errors.New("missing sid claim")
	}
	return nil
}
