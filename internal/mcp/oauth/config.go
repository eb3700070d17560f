package oauth

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/meetwhen/meetwhen/internal/google"
)

// Default values for optional Config fields.
const (
	// DefaultRateLimitRate is the default number of requests per second
	// allowed per client IP.
	DefaultRateLimitRate = 10

	// DefaultRateLimitBurst is the default burst size per client IP.
	DefaultRateLimitBurst = 20
)

// Config holds the configuration for the OAuth handler
type Config struct {
	// Resource is the canonical URL of this MCP server, used as the
	// protected resource identifier (RFC 9728). HTTPS is required except
	// for loopback addresses.
	Resource string

	// SupportedScopes lists the Google OAuth scopes this resource accepts.
	// Defaults to google.DefaultOAuthScopes when empty.
	SupportedScopes []string

	// RateLimitRate is the allowed requests per second per client IP.
	// A value of 0 uses DefaultRateLimitRate; a negative value disables
	// rate limiting.
	RateLimitRate int

	// RateLimitBurst is the burst size per client IP.
	// A value of 0 uses DefaultRateLimitBurst.
	RateLimitBurst int

	// TrustProxy controls whether X-Forwarded-For and X-Real-IP headers
	// are trusted when extracting client IPs. Enable only when the server
	// is deployed behind a trusted reverse proxy.
	TrustProxy bool

	// HTTPClient is used for outbound token validation requests.
	// Defaults to a client with a 30 second timeout.
	HTTPClient *http.Client

	// Logger is used for handler logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// validate checks the config and fills in defaults.
func (c *Config) validate() error {
	if c.Resource == "" {
		return fmt.Errorf("resource is required")
	}

	u, err := url.Parse(c.Resource)
	if err != nil {
		return fmt.Errorf("invalid resource URL: %w", err)
	}

	// HTTP is allowed only for loopback addresses during development.
	if u.Scheme != "https" {
		host := u.Hostname()
		if u.Scheme != "http" || (host != "localhost" && host != "127.0.0.1" && host != "::1") {
			return fmt.Errorf("resource must use HTTPS in production (got %s)", c.Resource)
		}
	}

	if len(c.SupportedScopes) == 0 {
		c.SupportedScopes = google.DefaultOAuthScopes
	}
	if c.RateLimitRate == 0 {
		c.RateLimitRate = DefaultRateLimitRate
	}
	if c.RateLimitBurst == 0 {
		c.RateLimitBurst = DefaultRateLimitBurst
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return nil
}
