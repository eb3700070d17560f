package oauth

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/giantswarm/mcp-oauth/storage"
	"github.com/giantswarm/mcp-oauth/storage/memory"
)

// googleAuthorizationServer is advertised to MCP clients as the
// authorization server for this resource.
const googleAuthorizationServer = "https://accounts.google.com"

// Handler implements the OAuth 2.1 resource-server endpoints for the MCP server.
// It serves Protected Resource Metadata and validates Google-issued Bearer
// tokens on protected endpoints.
type Handler struct {
	config      *Config
	store       storage.TokenStore
	stopStore   func()
	rateLimiter *rateLimiter
	httpClient  *http.Client
}

// NewHandler creates a new OAuth handler backed by an in-memory token store.
func NewHandler(config *Config) (*Handler, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	var rl *rateLimiter
	if config.RateLimitRate > 0 {
		rl = newRateLimiter(config.RateLimitRate, config.RateLimitBurst, config.TrustProxy)
		config.Logger.Info("rate limiting enabled",
			"rate", config.RateLimitRate,
			"burst", config.RateLimitBurst)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	store := memory.New()

	return &Handler{
		config:      config,
		store:       store,
		stopStore:   store.Stop,
		rateLimiter: rl,
		httpClient:  httpClient,
	}, nil
}

// GetStore returns the underlying token store.
func (h *Handler) GetStore() storage.TokenStore {
	return h.store
}

// GetConfig returns the OAuth configuration.
func (h *Handler) GetConfig() *Config {
	return h.config
}

// Stop releases background resources held by the handler.
func (h *Handler) Stop() {
	if h.rateLimiter != nil {
		h.rateLimiter.stop()
	}
	if h.stopStore != nil {
		h.stopStore()
	}
}

// ServeProtectedResourceMetadata serves the OAuth 2.0 Protected Resource
// Metadata (RFC 9728). MCP clients fetch this endpoint after receiving a 401
// to discover the authorization server and the scopes this resource expects.
func (h *Handler) ServeProtectedResourceMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	metadata := ProtectedResourceMetadata{
		Resource:               h.config.Resource,
		AuthorizationServers:   []string{googleAuthorizationServer},
		BearerMethodsSupported: []string{"header"},
		ScopesSupported:        h.config.SupportedScopes,
	}

	h.setSecurityHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(metadata); err != nil {
		h.config.Logger.Error("failed to encode resource metadata", "error", err)
	}
}

// setSecurityHeaders sets security headers on HTTP responses
func (h *Handler) setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
	w.Header().Set("Referrer-Policy", "no-referrer")

	if u, err := url.Parse(h.config.Resource); err == nil && u.Scheme == "https" {
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	}
}

// writeError is a helper to write OAuth error responses
func (h *Handler) writeError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	h.setSecurityHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:            errorCode,
		ErrorDescription: description,
	})
}
