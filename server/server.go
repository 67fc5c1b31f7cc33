package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/go-identity-server/auth"
	"github.com/jrsteele09/go-identity-server/internal/config"
	"github.com/jrsteele09/go-identity-server/internal/metrics"
	"github.com/jrsteele09/go-identity-server/token"
	"github.com/jrsteele09/go-identity-server/users"
	"github.com/rs/zerolog"
)

// Dependencies are the collaborators the HTTP boundary is built from.
type Dependencies struct {
	Authority *auth.SessionAuthority
	Issuer    *token.Issuer
	Users     users.UserRepo
	Metrics   *metrics.Metrics
	Logger    zerolog.Logger
	Health    []HealthCheck
}

type Server struct {
	env           string // Environment (e.g., "DEV", "PROD")
	router        chi.Router
	config        config.Config
	authority     *auth.SessionAuthority
	issuer        *token.Issuer
	users         users.UserRepo
	metrics       *metrics.Metrics
	logger        zerolog.Logger
	health        []HealthCheck
	validate      *validator.Validate
	refreshHeader string
}

func New(config config.Config, deps Dependencies) (*Server, error) {
	if config == nil {
		return nil, errors.New("[Server New] config is required")
	}
	if deps.Authority == nil {
		return nil, errors.New("[Server New] session authority is required")
	}
	if deps.Issuer == nil {
		return nil, errors.New("[Server New] token issuer is required")
	}
	if deps.Users == nil {
		return nil, errors.New("[Server New] user repo is required")
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	s := &Server{
		env:           config.GetEnv(),
		router:        chi.NewRouter(),
		config:        config,
		authority:     deps.Authority,
		issuer:        deps.Issuer,
		users:         deps.Users,
		metrics:       deps.Metrics,
		logger:        deps.Logger,
		health:        deps.Health,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		refreshHeader: config.GetRefreshTokenHeader(),
	}

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRoutes() {
	if !s.config.IsDev() {
		return
	}
	_ = chi.Walk(s.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		s.logger.Info().Msgf("[%-17s] %s", colouredMethod(method), route)
		return nil
	})
}
