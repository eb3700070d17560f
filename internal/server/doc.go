// Package server provides the MCP server context and the OAuth-enabled
// HTTP server for the meetwhen application.
//
// # Key Components
//
// ServerContext manages Google Calendar clients with lazy initialization
// and caching. It supports multiple accounts and can use different token
// sources:
//   - File-backed tokens: For STDIO transport, written by 'meetwhen auth'
//   - OAuth TokenProvider: For HTTP transport, tokens from the OAuth flow
//
// OAuthHTTPServer wraps an MCP server with OAuth 2.1 authentication:
//   - Protected Resource Metadata (RFC 9728)
//   - Google Bearer token validation on MCP endpoints
//   - Rate limiting per client IP
//
// MetricsServer serves Prometheus metrics on a dedicated port, and
// HealthChecker provides liveness and readiness endpoints for Kubernetes
// probes.
package server
