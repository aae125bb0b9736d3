package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the public landing page.
	RouteRoot = "/"
	// RouteWelcome is the post-sign-in welcome page.
	RouteWelcome = "/welcome"
	// RouteDashboard is the dashboard route.
	RouteDashboard = "/dashboard"
	// RouteUsers is the users listing route.
	RouteUsers = "/users"
	// RouteUsersNew is the new-user form route.
	RouteUsersNew = RouteUsers + "/new"
	// RouteUsersID is the user detail route pattern.
	RouteUsersID = RouteUsers + "/{id}"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteHealth is the health check route.
	RouteHealth = "/health"
	// RouteDevLogin is the development-only login route.
	RouteDevLogin = "/dev/login"
)

const (
	redirectRoot      = RouteRoot
	redirectWelcome   = RouteWelcome
	redirectDashboard = RouteDashboard
	redirectUsers     = RouteUsers
	redirectUsersNew  = RouteUsersNew
)
