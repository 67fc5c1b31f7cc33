package server

import (
	"errors"
	"net/http"

	"github.com/jrsteele09/go-identity-server/auth"
	apperrors "github.com/jrsteele09/go-identity-server/internal/errors"
	"github.com/jrsteele09/go-identity-server/internal/logging"
)

var (
	MissingRefreshTokenErr = errors.New("missing refresh token")
	UnauthorizedErr        = errors.New("unauthorized")
	BadRequestErr          = errors.New("bad request")
)

// errorMapping is one row of the boundary error table.
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// errorTable is matched top to bottom with errors.Is. Unmatched errors are 500s.
var errorTable = []errorMapping{
	{auth.InvalidCredentialsErr, http.StatusUnauthorized, "invalid_credentials", "invalid email or password"},
	{auth.InvalidRefreshTokenErr, http.StatusUnauthorized, "invalid_refresh_token", "refresh token is invalid or expired"},
	{auth.InvalidSessionErr, http.StatusUnauthorized, "invalid_session", "session is no longer active"},
	{MissingRefreshTokenErr, http.StatusUnauthorized, "missing_refresh_token", "refresh token header is required"},
	{UnauthorizedErr, http.StatusUnauthorized, "unauthorized", "a valid bearer access token is required"},
	{auth.InfrastructureUnavailableErr, http.StatusServiceUnavailable, "service_unavailable", "service temporarily unavailable"},
	{apperrors.ErrStoreUnavailable, http.StatusServiceUnavailable, "service_unavailable", "service temporarily unavailable"},
	{apperrors.ErrNotFound, http.StatusNotFound, "not_found", "resource not found"},
	{BadRequestErr, http.StatusBadRequest, "bad_request", "request is malformed"},
}

type errorResponse struct {
	Error         string            `json:"error"`
	Message       string            `json:"message"`
	Fields        map[string]string `json:"fields,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
}

func lookupError(err error) errorMapping {
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			return m
		}
	}
	return errorMapping{status: http.StatusInternalServerError, code: "internal_error", message: "internal server error"}
}

// writeError renders err through the error table. Internal details never reach the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	m := lookupError(err)
	resp := errorResponse{
		Error:         m.code,
		Message:       m.message,
		CorrelationID: logging.CorrelationID(r.Context()),
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}

	logger := logging.FromContext(r.Context(), s.logger)
	if m.status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", m.status).Msg("request failed")
	} else {
		logger.Debug().Err(err).Int("status", m.status).Msg("request rejected")
	}

	writeJSON(w, m.status, resp)
}
