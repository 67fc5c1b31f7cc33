package server

import (
	"context"
	"net/http"
	"time"

	"github.com/jrsteele09/go-identity-server/internal/logging"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck probes one dependency, such as the session store or the user database.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthHandler reports 200 when every dependency answers and 503 otherwise.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(s.health))}
		status := http.StatusOK

		for _, hc := range s.health {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			err := hc.Check(ctx)
			cancel()

			if err != nil {
				logging.FromContext(r.Context(), s.logger).Warn().Err(err).Str("dependency", hc.Name).Msg("health check failed")
				resp.Checks[hc.Name] = "unavailable"
				resp.Status = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[hc.Name] = "ok"
		}

		writeJSON(w, status, resp)
	}
}
