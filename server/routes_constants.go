package server

// Route path constants
const (
	RouteAuthLogin   = "/auth/login"
	RouteAuthRefresh = "/auth/refresh"
	RouteAuthLogout  = "/auth/logout"

	RouteUsersMe = "/users/me"

	RouteHealth  = "/health"
	RouteMetrics = "/metrics"
)
