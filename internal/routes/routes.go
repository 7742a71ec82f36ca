package routes

const (
	// Health
	Health  = "/health"
	Metrics = "/metrics"

	// HTML form
	Index           = "/"
	Form            = "/form/{token}"
	FormKeys        = "/form/{token}/keys"
	FormInvitations = "/form/{token}/invitations"

	// JSON API
	Sessions           = "/api/v1/sessions"
	Session            = "/api/v1/sessions/{token}"
	SessionKeys        = "/api/v1/sessions/{token}/keys"
	SessionInvitations = "/api/v1/sessions/{token}/invitations"
)
