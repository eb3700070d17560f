package google

// DefaultOAuthScopes are the Google OAuth scopes required for availability
// queries. These scopes are used consistently across the application for
// OAuth configurations.
//
// The scopes provide access to:
//   - Google Calendar: read-only calendar and free/busy access
//   - Contacts: read-only (for resolving participant emails)
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// Google Calendar scopes
	"https://www.googleapis.com/auth/calendar.readonly",
	"https://www.googleapis.com/auth/calendar.freebusy",

	// Contacts scopes
	"https://www.googleapis.com/auth/contacts.readonly",
	"https://www.googleapis.com/auth/directory.readonly",
}
