// Package oauth provides OAuth 2.1 resource-server support for the
// meetwhen MCP server.
//
// The meetwhen HTTP transport acts as an OAuth 2.1 Resource Server: it
// publishes Protected Resource Metadata (RFC 9728) so MCP clients can
// discover Google as the authorization server, validates Google-issued
// Bearer tokens on every request, and caches validated tokens so the
// calendar provider can query free/busy data on behalf of the
// authenticated user.
//
// Token storage is backed by the github.com/giantswarm/mcp-oauth storage
// layer. TokenProvider bridges that store to the google.TokenProvider
// interface used by calendar clients, so the same client code works for
// both file-based tokens (STDIO transport) and OAuth tokens (HTTP
// transport).
package oauth
