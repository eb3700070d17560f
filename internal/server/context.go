package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/meetwhen/meetwhen/internal/calendar"
	"github.com/meetwhen/meetwhen/internal/google"
	"github.com/meetwhen/meetwhen/internal/instrumentation"
)

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx             context.Context
	cancel          context.CancelFunc
	calendarClients map[string]*calendar.Client // Maps account name to Calendar client
	tokenProvider   google.TokenProvider        // Optional, overrides file-based tokens
	metrics         *instrumentation.Metrics
	auditLogger     *instrumentation.AuditLogger
	mu              sync.RWMutex
	shutdown        bool
}

// NewServerContext creates a new server context using file-based tokens
func NewServerContext(ctx context.Context) (*ServerContext, error) {
	return NewServerContextWithProvider(ctx, nil)
}

// NewServerContextWithProvider creates a new server context with a custom
// token provider. A nil provider falls back to file-based tokens, which is
// the right choice for the STDIO transport.
func NewServerContextWithProvider(ctx context.Context, tokenProvider google.TokenProvider) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:             shutdownCtx,
		cancel:          cancel,
		calendarClients: make(map[string]*calendar.Client),
		tokenProvider:   tokenProvider,
	}

	// Try to create the default client eagerly, but don't fail if the
	// token is missing. Clients are lazily initialized when first needed.
	if sc.hasTokenForAccount("default") {
		client, err := sc.newClientForAccount("default")
		if err != nil {
			slog.Warn("failed to create calendar client for default account", "error", err)
		} else {
			sc.calendarClients["default"] = client
		}
	}

	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// TokenProvider returns the configured token provider, or nil when
// file-based tokens are in use.
func (sc *ServerContext) TokenProvider() google.TokenProvider {
	return sc.tokenProvider
}

// CalendarClientForAccount returns the Calendar client for a specific account.
// Creates and caches the client if it doesn't exist yet.
// Returns nil if the account has no token.
func (sc *ServerContext) CalendarClientForAccount(account string) *calendar.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if client, ok := sc.calendarClients[account]; ok {
		return client
	}

	if !sc.hasTokenForAccount(account) {
		return nil
	}

	client, err := sc.newClientForAccount(account)
	if err != nil {
		slog.Warn("failed to create calendar client", "account", account, "error", err)
		return nil
	}

	sc.calendarClients[account] = client
	return client
}

// CalendarClient returns the Calendar client for the default account
func (sc *ServerContext) CalendarClient() *calendar.Client {
	return sc.CalendarClientForAccount("default")
}

// SetCalendarClientForAccount sets the Calendar client for a specific account
func (sc *ServerContext) SetCalendarClientForAccount(account string, client *calendar.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.calendarClients[account] = client
}

// SetCalendarClient sets the Calendar client for the default account
func (sc *ServerContext) SetCalendarClient(client *calendar.Client) {
	sc.SetCalendarClientForAccount("default", client)
}

func (sc *ServerContext) hasTokenForAccount(account string) bool {
	if sc.tokenProvider != nil {
		return sc.tokenProvider.HasTokenForAccount(account)
	}
	return calendar.HasTokenForAccount(account)
}

func (sc *ServerContext) newClientForAccount(account string) (*calendar.Client, error) {
	if sc.tokenProvider != nil {
		return calendar.NewClientForAccountWithProvider(sc.ctx, account, sc.tokenProvider)
	}
	return calendar.NewClientForAccount(sc.ctx, account)
}

// SetInstrumentation configures metrics and audit logging for tool handlers.
func (sc *ServerContext) SetInstrumentation(metrics *instrumentation.Metrics, auditLogger *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
	sc.auditLogger = auditLogger
}

// Metrics returns the configured metrics recorder, or nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// AuditLogger returns the configured audit logger, or nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// CachedAccounts returns the number of accounts with an initialized
// calendar client.
func (sc *ServerContext) CachedAccounts() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.calendarClients)
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
