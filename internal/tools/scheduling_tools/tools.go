package scheduling_tools

import (
	"context"
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/meetwhen/meetwhen/internal/calendar"
	"github.com/meetwhen/meetwhen/internal/google"
	"github.com/meetwhen/meetwhen/internal/server"
)

// getCalendarClient retrieves or creates a calendar client for the specified account
func getCalendarClient(_ context.Context, account string, sc *server.ServerContext) (*calendar.Client, error) {
	if client := sc.CalendarClientForAccount(account); client != nil {
		return client, nil
	}

	if sc.TokenProvider() != nil {
		return nil, fmt.Errorf("no Google token for account %q: authenticate through your MCP client and retry", account)
	}

	authURL := google.GetAuthURLForAccount(account)
	return nil, fmt.Errorf(`Google OAuth token not found for account %q. To authorize access:

1. Visit this URL in your browser:
   %s

2. Sign in with your Google account and grant calendar access
3. Run 'meetwhen auth --account %s' and paste the authorization code

You only need to authorize once. Tokens are refreshed automatically.`, account, authURL, account)
}

// RegisterSchedulingTools registers all availability tools with the MCP server
func RegisterSchedulingTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := RegisterFreeBusyTools(s, sc); err != nil {
		return fmt.Errorf("failed to register free/busy tools: %w", err)
	}
	if err := RegisterRecurringTools(s, sc); err != nil {
		return fmt.Errorf("failed to register recurring slot tools: %w", err)
	}
	return nil
}
