// Package auth orchestrates login, refresh, logout and account deletion on top of the
// token issuer and the session registry.
//
// A session is Active from the moment it is recorded until it is revoked (logout,
// account deletion, rotation or cap eviction) or its refresh token expires. Neither
// terminal state leads back to Active.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-identity-server/internal/errors"
	"github.com/jrsteele09/go-identity-server/internal/logging"
	"github.com/jrsteele09/go-identity-server/internal/metrics"
	"github.com/jrsteele09/go-identity-server/sessions"
	"github.com/jrsteele09/go-identity-server/token"
	"github.com/rs/zerolog"
)

// Operation names used in logs and metrics.
const (
	OpLogin     = "login"
	OpRefresh   = "refresh"
	OpLogout    = "logout"
	OpRevokeAll = "revoke_all"
)

// TokenPair is returned by Login and Refresh.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type"`
	ExpiresIn    time.Duration `json:"-"`
}

// Repos holds the collaborators of the SessionAuthority.
type Repos struct {
	Credentials CredentialVerifier
	Principals  PrincipalLookup
	Sessions    sessions.Registry
}

// SessionAuthority implements the session lifecycle use cases.
type SessionAuthority struct {
	repos           Repos
	issuer          *token.Issuer
	logger          zerolog.Logger
	metrics         *metrics.Metrics
	refreshRotation bool
	newSessionID    func() string
}

type SessionAuthorityOption func(*SessionAuthority)

// WithLogger sets the logger used when the request context carries none.
func WithLogger(logger zerolog.Logger) SessionAuthorityOption {
	return func(sa *SessionAuthority) {
		sa.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) SessionAuthorityOption {
	return func(sa *SessionAuthority) {
		sa.metrics = m
	}
}

// WithRefreshRotation controls whether Refresh replaces the session and its refresh token.
func WithRefreshRotation(rotate bool) SessionAuthorityOption {
	return func(sa *SessionAuthority) {
		sa.refreshRotation = rotate
	}
}

func WithSessionIDFunc(newID func() string) SessionAuthorityOption {
	return func(sa *SessionAuthority) {
		sa.newSessionID = newID
	}
}

func NewSessionAuthority(repos Repos, issuer *token.Issuer, options ...SessionAuthorityOption) (*SessionAuthority, error) {
	if repos.Credentials == nil {
		return nil, errors.New("[NewSessionAuthority] credential verifier is required")
	}
	if repos.Principals == nil {
		return nil, errors.New("[NewSessionAuthority] principal lookup is required")
	}
	if repos.Sessions == nil {
		return nil, errors.New("[NewSessionAuthority] session registry is required")
	}
	if issuer == nil {
		return nil, errors.New("[NewSessionAuthority] token issuer is required")
	}

	sa := &SessionAuthority{
		repos:           repos,
		issuer:          issuer,
		logger:          zerolog.Nop(),
		refreshRotation: true,
		newSessionID:    func() string { return uuid.New().String() },
	}
	for _, opt := range options {
		opt(sa)
	}
	return sa, nil
}

// Login verifies the credentials and opens a new session. No tokens are returned unless
// the session was recorded.
func (sa *SessionAuthority) Login(ctx context.Context, email, password string) (pair *TokenPair, err error) {
	defer func() { sa.observe(OpLogin, err) }()

	subjectID, err := sa.repos.Credentials.AuthenticateCredentials(ctx, email, password)
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return nil, InvalidCredentialsErr
	case err != nil:
		return nil, sa.infraFailure(ctx, OpLogin, "", "credential verifier", err)
	}

	principal, err := sa.repos.Principals.LookupPrincipal(ctx, subjectID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return nil, InvalidCredentialsErr
	case err != nil:
		return nil, sa.infraFailure(ctx, OpLogin, subjectID, "principal lookup", err)
	}

	return sa.openSession(ctx, OpLogin, principal.ID, principal.Email)
}

// Refresh exchanges a refresh token for a new access token. With rotation enabled the
// presented session is revoked and a new session and refresh token are issued.
func (sa *SessionAuthority) Refresh(ctx context.Context, refreshToken string) (pair *TokenPair, err error) {
	defer func() { sa.observe(OpRefresh, err) }()

	claims, err := sa.verifyRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	active, err := sa.repos.Sessions.IsActive(ctx, claims.Subject, claims.SessionID)
	if err != nil {
		return nil, sa.infraFailure(ctx, OpRefresh, claims.Subject, "session registry", err)
	}
	if !active {
		return nil, InvalidSessionErr
	}

	principal, err := sa.repos.Principals.LookupPrincipal(ctx, claims.Subject)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return nil, InvalidRefreshTokenErr
	case err != nil:
		return nil, sa.infraFailure(ctx, OpRefresh, claims.Subject, "principal lookup", err)
	}

	if !sa.refreshRotation {
		accessToken, err := sa.issuer.IssueAccessToken(principal.ID, principal.Email)
		if err != nil {
			return nil, sa.infraFailure(ctx, OpRefresh, principal.ID, "token issuer", err)
		}
		return sa.tokenPair(accessToken, refreshToken), nil
	}

	if err := sa.repos.Sessions.Revoke(ctx, claims.Subject, claims.SessionID); err != nil {
		return nil, sa.infraFailure(ctx, OpRefresh, claims.Subject, "session registry", err)
	}
	return sa.openSession(ctx, OpRefresh, principal.ID, principal.Email)
}

// Logout revokes the session of a valid refresh token. Logging out twice succeeds.
func (sa *SessionAuthority) Logout(ctx context.Context, refreshToken string) (err error) {
	defer func() { sa.observe(OpLogout, err) }()

	claims, err := sa.verifyRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}
	if err := sa.repos.Sessions.Revoke(ctx, claims.Subject, claims.SessionID); err != nil {
		return sa.infraFailure(ctx, OpLogout, claims.Subject, "session registry", err)
	}
	return nil
}

// RevokeAllSessions invalidates every refresh token of the subject. Account deletion
// must call it before removing the principal.
func (sa *SessionAuthority) RevokeAllSessions(ctx context.Context, subjectID string) (err error) {
	defer func() { sa.observe(OpRevokeAll, err) }()

	if err := sa.repos.Sessions.RevokeAll(ctx, subjectID); err != nil {
		return sa.infraFailure(ctx, OpRevokeAll, subjectID, "session registry", err)
	}
	return nil
}

func (sa *SessionAuthority) openSession(ctx context.Context, op, subjectID, email string) (*TokenPair, error) {
	sessionID := sa.newSessionID()

	accessToken, err := sa.issuer.IssueAccessToken(subjectID, email)
	if err != nil {
		return nil, sa.infraFailure(ctx, op, subjectID, "token issuer", err)
	}
	refreshToken, err := sa.issuer.IssueRefreshToken(subjectID, sessionID)
	if err != nil {
		return nil, sa.infraFailure(ctx, op, subjectID, "token issuer", err)
	}

	if err := sa.repos.Sessions.RecordSession(ctx, subjectID, sessionID); err != nil {
		return nil, sa.infraFailure(ctx, op, subjectID, "session registry", err)
	}
	return sa.tokenPair(accessToken, refreshToken), nil
}

func (sa *SessionAuthority) verifyRefreshToken(ctx context.Context, refreshToken string) (*token.RefreshClaims, error) {
	claims, err := sa.issuer.VerifyRefreshToken(refreshToken)
	if err != nil {
		var invalid *token.InvalidTokenError
		if errors.As(err, &invalid) {
			logging.FromContext(ctx, sa.logger).Debug().Str("reason", invalid.Reason).Msg("refresh token rejected")
		}
		return nil, InvalidRefreshTokenErr
	}
	return claims, nil
}

func (sa *SessionAuthority) tokenPair(accessToken, refreshToken string) *TokenPair {
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    sa.issuer.AccessTokenExpiry(),
	}
}

// infraFailure logs the underlying cause and returns an InfrastructureUnavailableErr.
func (sa *SessionAuthority) infraFailure(ctx context.Context, op, subjectID, dependency string, err error) error {
	logging.FromContext(ctx, sa.logger).Error().
		Err(err).
		Str("operation", op).
		Str("subject_id", subjectID).
		Str("dependency", dependency).
		Msg("session authority dependency failed")
	return unavailable(op, err)
}

func (sa *SessionAuthority) observe(op string, err error) {
	if sa.metrics == nil {
		return
	}
	switch {
	case err == nil:
		sa.metrics.ObserveAuth(op, metrics.OutcomeSuccess)
	case errors.Is(err, InfrastructureUnavailableErr):
		sa.metrics.ObserveAuth(op, metrics.OutcomeError)
	default:
		sa.metrics.ObserveAuth(op, metrics.OutcomeFailure)
	}
}
