package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-identity-server/auth"
	"github.com/jrsteele09/go-identity-server/internal/logging"
)

const maxBodyBytes = 1 << 16

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,max=72"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"` // seconds until the access token expires
}

func newTokenResponse(pair *auth.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int64(pair.ExpiresIn.Seconds()),
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			s.writeError(w, r, fmt.Errorf("%w: decode login body: %w", BadRequestErr, err))
			return
		}
		if err := s.validateStruct(&req); err != nil {
			s.writeError(w, r, err)
			return
		}

		pair, err := s.authority.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, newTokenResponse(pair))
	}
}

func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refreshToken, err := s.refreshTokenFromHeader(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		pair, err := s.authority.Refresh(r.Context(), refreshToken)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, newTokenResponse(pair))
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refreshToken, err := s.refreshTokenFromHeader(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		if err := s.authority.Logout(r.Context(), refreshToken); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// CurrentUserHandler returns the profile of the access token's subject.
func (s *Server) CurrentUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := AccessClaimsFromContext(r.Context())
		if claims == nil {
			s.writeError(w, r, UnauthorizedErr)
			return
		}

		user, err := s.users.GetByID(r.Context(), claims.Subject)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

// DeleteAccountHandler revokes every session of the subject before removing the user.
func (s *Server) DeleteAccountHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := AccessClaimsFromContext(r.Context())
		if claims == nil {
			s.writeError(w, r, UnauthorizedErr)
			return
		}

		if err := s.authority.RevokeAllSessions(r.Context(), claims.Subject); err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.users.Delete(r.Context(), claims.Subject); err != nil {
			s.writeError(w, r, err)
			return
		}

		logging.FromContext(r.Context(), s.logger).Info().Str("subject_id", claims.Subject).Msg("account deleted")
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error:         "not_found",
			Message:       "route not found",
			CorrelationID: logging.CorrelationID(r.Context()),
		})
	}
}

func (s *Server) MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
			Error:         "method_not_allowed",
			Message:       "method not allowed",
			CorrelationID: logging.CorrelationID(r.Context()),
		})
	}
}

func (s *Server) refreshTokenFromHeader(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get(s.refreshHeader))
	if raw == "" {
		return "", MissingRefreshTokenErr
	}
	return raw, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
