package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-identity-server/internal/errors"
)

const (
	DefaultAccessTokenExpiry  = 15 * time.Minute
	DefaultRefreshTokenExpiry = 7 * 24 * time.Hour
)

// ErrInvalidToken is matched by every verification failure
var ErrInvalidToken = apperrors.ErrInvalidToken

// InvalidTokenError carries the reason a token was rejected. It always matches ErrInvalidToken.
type InvalidTokenError struct {
	Reason string
	Err    error
}

func (e *InvalidTokenError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrInvalidToken, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", ErrInvalidToken, e.Reason, e.Err)
}

func (e *InvalidTokenError) Is(target error) bool { return target == ErrInvalidToken }

func (e *InvalidTokenError) Unwrap() error { return e.Err }

// Issuer mints and verifies the service's access and refresh tokens.
// It does no I/O; the refresh token's session is checked elsewhere.
type Issuer struct {
	accessSigner       Signer
	refreshSigner      Signer
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	nowFunc            func() time.Time
	newID              func() string
}

type IssuerOption func(*Issuer)

func WithTokenExpiry(accessTokenExpiry, refreshTokenExpiry time.Duration) IssuerOption {
	return func(i *Issuer) {
		i.accessTokenExpiry = accessTokenExpiry
		i.refreshTokenExpiry = refreshTokenExpiry
	}
}

func WithNowFunc(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.nowFunc = now
	}
}

func NewIssuer(accessSigner, refreshSigner Signer, options ...IssuerOption) (*Issuer, error) {
	if accessSigner == nil {
		return nil, errors.New("[NewIssuer] access signer is required")
	}
	if refreshSigner == nil {
		return nil, errors.New("[NewIssuer] refresh signer is required")
	}

	i := &Issuer{
		accessSigner:  accessSigner,
		refreshSigner: refreshSigner,
		newID:         func() string { return uuid.New().String() },
	}
	for _, opt := range options {
		opt(i)
	}

	if i.accessTokenExpiry <= 0 {
		i.accessTokenExpiry = DefaultAccessTokenExpiry
	}
	if i.refreshTokenExpiry <= 0 {
		i.refreshTokenExpiry = DefaultRefreshTokenExpiry
	}
	if i.nowFunc == nil {
		i.nowFunc = time.Now
	}
	return i, nil
}

func (i *Issuer) AccessTokenExpiry() time.Duration {
	return i.accessTokenExpiry
}

func (i *Issuer) RefreshTokenExpiry() time.Duration {
	return i.refreshTokenExpiry
}

// IssueAccessToken signs {sub, email, jti, iat, exp} with the access secret.
func (i *Issuer) IssueAccessToken(subjectID, email string) (string, error) {
	now := i.nowFunc()
	claims := &AccessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ID:        i.newID(), // distinct tokens within the same second
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTokenExpiry)),
		},
	}
	if err := claims.Validate(); err != nil {
		return "", fmt.Errorf("Issuer.IssueAccessToken: %w", err)
	}
	signed, err := i.accessSigner.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("Issuer.IssueAccessToken: %w", err)
	}
	return signed, nil
}

// IssueRefreshToken signs {sub, sid, iat, exp} with the refresh secret.
func (i *Issuer) IssueRefreshToken(subjectID, sessionID string) (string, error) {
	now := i.nowFunc()
	claims := &RefreshClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.refreshTokenExpiry)),
		},
	}
	if err := claims.Validate(); err != nil {
		return "", fmt.Errorf("Issuer.IssueRefreshToken: %w", err)
	}
	signed, err := i.refreshSigner.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("Issuer.IssueRefreshToken: %w", err)
	}
	return signed, nil
}

func (i *Issuer) VerifyAccessToken(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := Verify(raw, i.accessSigner, claims, i.nowFunc); err != nil {
		return nil, err
	}
	return claims, nil
}

func (i *Issuer) VerifyRefreshToken(raw string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := Verify(raw, i.refreshSigner, claims, i.nowFunc); err != nil {
		return nil, err
	}
	return claims, nil
}

// Verify parses raw into claims, checking structure, algorithm, signature, expiry and
// the claims' own schema. Every failure is an *InvalidTokenError.
func Verify(raw string, signer Signer, claims jwt.Claims, now func() time.Time) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return &InvalidTokenError{Reason: "empty"}
	}
	if now == nil {
		now = time.Now
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{signer.GetSigningMethod().Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(now),
	)

	parsed, err := parser.ParseWithClaims(raw, claims, signer.GetVerificationKey)
	if err != nil {
		return &InvalidTokenError{Reason: reason(err), Err: err}
	}
	if !parsed.Valid {
		return &InvalidTokenError{Reason: "invalid"}
	}
	return nil
}

func reason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "signature"
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return "unverifiable"
	case errors.Is(err, jwt.ErrTokenInvalidClaims):
		return "claims"
	default:
		return "invalid"
	}
}
