package authapi

// Auth endpoints of the marketplace API, relative to the base URL
const (
	RouteLogin         = "/auth/login"
	RouteRegister      = "/auth/register"
	RouteRefresh       = "/auth/refresh"
	RouteLogout        = "/auth/logout"
	RouteMe            = "/auth/me"
	RouteValidate      = "/auth/validate"
	RouteDeleteAccount = "/auth/delete-account"
)
