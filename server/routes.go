package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	r := s.router

	r.Use(
		s.CorrelationIDMiddleware,
		s.LoggingMiddleware,
		s.RecoverMiddleware,
		s.CorsMiddleware(),
		s.MetricsMiddleware,
	)
	r.NotFound(s.NotFoundHandler())
	r.MethodNotAllowed(s.MethodNotAllowedHandler())

	r.Get(RouteHealth, s.HealthHandler())
	r.Method("GET", RouteMetrics, promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))

	r.Post(RouteAuthLogin, s.LoginHandler())
	r.Post(RouteAuthRefresh, s.RefreshHandler())
	r.Post(RouteAuthLogout, s.LogoutHandler())

	r.Group(func(r chi.Router) {
		r.Use(s.RequireAuth)
		r.Get(RouteUsersMe, s.CurrentUserHandler())
		r.Delete(RouteUsersMe, s.DeleteAccountHandler())
	})
}
