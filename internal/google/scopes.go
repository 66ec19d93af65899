package google

// DefaultOAuthScopes are the Google OAuth scopes requested during consent.
// The set is fixed: event write access plus the profile fields the
// credential store keeps.
var DefaultOAuthScopes = []string{
	// Google Calendar event access
	"https://www.googleapis.com/auth/calendar.events",

	// User profile scopes (subject id, name, email)
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/userinfo.email",
}
