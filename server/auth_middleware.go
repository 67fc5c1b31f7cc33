package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-identity-server/internal/logging"
	"github.com/jrsteele09/go-identity-server/token"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyClaims stores the verified access token claims
const ContextKeyClaims ContextKey = "claims"

// RequireAuth validates a Bearer access token and stores its claims in the request context.
// Access tokens are stateless and never checked against the session registry.
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		scheme, raw, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(raw) == "" {
			s.writeError(w, r, UnauthorizedErr)
			return
		}

		claims, err := s.issuer.VerifyAccessToken(raw)
		if err != nil {
			var invalid *token.InvalidTokenError
			if errors.As(err, &invalid) {
				logging.FromContext(r.Context(), s.logger).Debug().Str("reason", invalid.Reason).Msg("access token rejected")
			}
			s.writeError(w, r, UnauthorizedErr)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AccessClaimsFromContext returns the claims stored by RequireAuth, or nil.
func AccessClaimsFromContext(ctx context.Context) *token.AccessClaims {
	claims, _ := ctx.Value(ContextKeyClaims).(*token.AccessClaims)
	return claims
}
