package scheduling_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/meetwhen/meetwhen/internal/availability"
	"github.com/meetwhen/meetwhen/internal/instrumentation"
	"github.com/meetwhen/meetwhen/internal/interval"
	"github.com/meetwhen/meetwhen/internal/server"
	"github.com/meetwhen/meetwhen/internal/tools/batch"
	"github.com/meetwhen/meetwhen/internal/tools/common"
)

// RegisterFreeBusyTools registers the one-off availability tools with the MCP server
func RegisterFreeBusyTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Find common free time tool
	findCommonFreeTimeTool := mcp.NewTool("availability_find_common_free_time",
		mcp.WithDescription("Find time windows where all participants are free. Participants can be supplied inline as JSON calendars or resolved from Google Calendar."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("timeMin",
			mcp.Required(),
			mcp.Description("Start of the search window (RFC3339 format, e.g., '2025-01-06T09:00:00Z')"),
		),
		mcp.WithString("timeMax",
			mcp.Required(),
			mcp.Description("End of the search window (RFC3339 format, e.g., '2025-01-06T17:00:00Z')"),
		),
		mcp.WithString("participants",
			mcp.Description(`Inline participant calendars as a JSON array, e.g. [{"name":"Alice","busy":[{"start":"...","end":"..."}]},{"name":"Bob","busy":null}]. A null busy list marks the calendar as unknown.`),
		),
		mcp.WithString("calendars",
			mcp.Description("Comma-separated Google calendar IDs or email addresses to resolve as participants"),
		),
		mcp.WithNumber("minDurationMinutes",
			mcp.Description("Discard free windows shorter than this many minutes"),
		),
	)

	s.AddTool(findCommonFreeTimeTool, common.InstrumentedToolHandler(
		"availability_find_common_free_time", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFindCommonFreeTime(ctx, request, sc)
		}))

	// Query free/busy tool
	queryFreeBusyTool := mcp.NewTool("availability_query_freebusy",
		mcp.WithDescription("Check raw busy data for one or more calendars/attendees in a time range"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("timeMin",
			mcp.Required(),
			mcp.Description("Start time for the range (RFC3339 format, e.g., '2025-01-01T00:00:00Z')"),
		),
		mcp.WithString("timeMax",
			mcp.Required(),
			mcp.Description("End time for the range (RFC3339 format, e.g., '2025-01-31T23:59:59Z')"),
		),
		mcp.WithString("calendars",
			mcp.Required(),
			mcp.Description("Comma-separated list of calendar IDs or email addresses to check"),
		),
	)

	s.AddTool(queryFreeBusyTool, common.InstrumentedToolHandlerWithProvider(
		"availability_query_freebusy",
		instrumentation.ProviderGoogleCalendar,
		instrumentation.OperationQueryFreeBusy,
		sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleQueryFreeBusy(ctx, request, sc)
		}))

	return nil
}

func handleFindCommonFreeTime(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	timeMin, err := parseTimeArg(args, "timeMin")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeMax, err := parseTimeArg(args, "timeMax")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	window, err := interval.NewSpan(timeMin, timeMax)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid search window: %v", err)), nil
	}

	var participants []availability.Participant

	if raw, ok := args["participants"].(string); ok && raw != "" {
		inline, err := parseParticipants(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		participants = append(participants, inline...)
	}

	if calendarsArg, ok := args["calendars"]; ok && calendarsArg != nil && calendarsArg != "" {
		ids, err := batch.ParseStringOrArray(calendarsArg, "calendars")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		ids = splitAndTrim(ids)

		client, err := getCalendarClient(ctx, account, sc)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		resolved, err := client.ResolveParticipants(ctx, ids, timeMin, timeMax)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to resolve participants: %v", err)), nil
		}
		participants = append(participants, resolved...)
	}

	if len(participants) == 0 {
		return mcp.NewToolResultError("at least one of participants or calendars is required"), nil
	}

	cfg := availability.FilterConfig{}
	if minutes, ok := args["minDurationMinutes"].(float64); ok && minutes > 0 {
		cfg.MinDuration = time.Duration(minutes) * time.Minute
	}

	free, err := availability.FindCommonFreeTime(participants, window, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to compute common free time: %v", err)), nil
	}

	return mcp.NewToolResultText(formatFreeWindows(free, len(participants))), nil
}

func formatFreeWindows(free availability.FreeWindows, participantCount int) string {
	var sb strings.Builder

	if len(free.Windows) == 0 {
		sb.WriteString("No common free windows found for the specified criteria\n")
	} else {
		fmt.Fprintf(&sb, "Found %d common free window(s) across %d participant(s):\n\n",
			len(free.Windows), participantCount)
		for i, w := range free.Windows {
			fmt.Fprintf(&sb, "%d. %s to %s (%s)\n",
				i+1,
				w.Start.Format("Mon, Jan 2 at 15:04 MST"),
				w.End.Format("15:04 MST"),
				w.Duration())
		}
	}

	if len(free.Unknown) > 0 {
		fmt.Fprintf(&sb, "\nNo calendar data for: %s. Their availability is not reflected above.\n",
			strings.Join(free.Unknown, ", "))
	}

	return sb.String()
}

func handleQueryFreeBusy(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	timeMin, err := parseTimeArg(args, "timeMin")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeMax, err := parseTimeArg(args, "timeMax")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	calendarsArg, ok := args["calendars"]
	if !ok || calendarsArg == "" {
		return mcp.NewToolResultError("calendars is required"), nil
	}
	calendars, err := batch.ParseStringOrArray(calendarsArg, "calendars")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	calendars = splitAndTrim(calendars)

	client, err := getCalendarClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	freeBusyInfos, err := client.QueryFreeBusy(ctx, timeMin, timeMax, calendars)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to query free/busy: %v", err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Free/Busy information for %d calendar(s):\n\n", len(freeBusyInfos))
	for _, info := range freeBusyInfos {
		fmt.Fprintf(&sb, "Calendar: %s\n", info.Calendar)

		if len(info.Errors) > 0 {
			fmt.Fprintf(&sb, "  Errors: %s\n", strings.Join(info.Errors, ", "))
			fmt.Fprintf(&sb, "  Status: UNKNOWN (availability could not be determined)\n\n")
			continue
		}

		if len(info.Busy) == 0 {
			sb.WriteString("  Status: FREE for entire range\n")
		} else {
			fmt.Fprintf(&sb, "  Busy periods: %d\n", len(info.Busy))
			for i, busy := range info.Busy {
				fmt.Fprintf(&sb, "  %d. %s to %s\n",
					i+1,
					busy.Start.Format("2006-01-02 15:04"),
					busy.End.Format("2006-01-02 15:04"))
			}
		}
		sb.WriteString("\n")
	}

	return mcp.NewToolResultText(sb.String()), nil
}

// splitAndTrim expands comma-separated entries and trims whitespace.
func splitAndTrim(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
