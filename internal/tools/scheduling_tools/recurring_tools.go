package scheduling_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/meetwhen/meetwhen/internal/availability"
	"github.com/meetwhen/meetwhen/internal/interval"
	"github.com/meetwhen/meetwhen/internal/recurring"
	"github.com/meetwhen/meetwhen/internal/server"
	"github.com/meetwhen/meetwhen/internal/tools/batch"
	"github.com/meetwhen/meetwhen/internal/tools/common"
)

// RegisterRecurringTools registers the override merger and the recurring
// slot scorer with the MCP server
func RegisterRecurringTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Merge overrides tool
	mergeOverridesTool := mcp.NewTool("availability_merge_overrides",
		mcp.WithDescription("Apply manual overrides to a provider busy list. Busy overrides add blocked time; free overrides carve provider busy time out."),
		mcp.WithString("busy",
			mcp.Required(),
			mcp.Description(`Provider busy intervals as a JSON array, e.g. [{"start":"2025-01-06T09:00:00Z","end":"2025-01-06T10:00:00Z"}]`),
		),
		mcp.WithString("overrides",
			mcp.Required(),
			mcp.Description(`Manual overrides as a JSON array, e.g. [{"start":"...","end":"...","summary":"focus block"},{"start":"...","end":"...","free":true}]`),
		),
	)

	s.AddTool(mergeOverridesTool, common.InstrumentedToolHandler(
		"availability_merge_overrides", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleMergeOverrides(ctx, request)
		}))

	// Score recurring slots tool
	scoreSlotsTool := mcp.NewTool("availability_score_recurring_slots",
		mcp.WithDescription("Score candidate recurring meeting slots against participant calendars over a sample period. Each candidate gets a conflict tally and a trade-off summary."),
		mcp.WithString("slots",
			mcp.Required(),
			mcp.Description("Candidate slots in DAY@HH:MM@Zone form (e.g. 'TU@09:00@America/New_York'), as a single value or a JSON array"),
		),
		mcp.WithNumber("durationMinutes",
			mcp.Required(),
			mcp.Description("Meeting duration in minutes"),
		),
		mcp.WithString("frequency",
			mcp.Description("Recurrence frequency: WEEKLY or BIWEEKLY (default: WEEKLY)"),
		),
		mcp.WithString("startDate",
			mcp.Required(),
			mcp.Description("First calendar date of the scoring range (YYYY-MM-DD)"),
		),
		mcp.WithString("endDate",
			mcp.Required(),
			mcp.Description("Last calendar date of the scoring range (YYYY-MM-DD, inclusive)"),
		),
		mcp.WithNumber("sampleWeeks",
			mcp.Description(fmt.Sprintf("Cap on the number of weeks to sample (default: %d)", recurring.DefaultSampleWeeks)),
		),
		mcp.WithString("participants",
			mcp.Required(),
			mcp.Description(`Participant calendars as a JSON object keyed by participant, e.g. {"alice":{"busy":[{"start":"...","end":"..."}]},"bob":null}. A null value marks the calendar as unknown.`),
		),
	)

	s.AddTool(scoreSlotsTool, common.InstrumentedToolHandler(
		"availability_score_recurring_slots", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleScoreRecurringSlots(ctx, request)
		}))

	return nil
}

func handleMergeOverrides(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	busyRaw, ok := args["busy"].(string)
	if !ok || busyRaw == "" {
		return mcp.NewToolResultError("busy is required"), nil
	}
	busy, err := parseSpans(busyRaw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	overridesRaw, ok := args["overrides"].(string)
	if !ok || overridesRaw == "" {
		return mcp.NewToolResultError("overrides is required"), nil
	}
	overrides, err := parseOverrides(overridesRaw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	merged := availability.MergeOverrides(busy, overrides)
	if merged == nil {
		// A list that merged down to nothing still serializes as [].
		merged = []interval.Span{}
	}

	out, err := json.MarshalIndent(struct {
		Busy []interval.Span `json:"busy"`
	}{merged}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal merged busy list: %w", err)
	}

	return mcp.NewToolResultText(string(out)), nil
}

func handleScoreRecurringSlots(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	slotsArg, ok := args["slots"]
	if !ok || slotsArg == "" {
		return mcp.NewToolResultError("slots is required"), nil
	}
	rawSlots, err := batch.ParseStringOrArray(slotsArg, "slots")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	durationMinutes, ok := args["durationMinutes"].(float64)
	if !ok || durationMinutes <= 0 {
		return mcp.NewToolResultError("durationMinutes is required and must be positive"), nil
	}

	freq := recurring.FrequencyWeekly
	if freqRaw, ok := args["frequency"].(string); ok && freqRaw != "" {
		freq, err = recurring.ParseFrequency(freqRaw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	startDate, err := parseDateArg(args, "startDate")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	endDate, err := parseDateArg(args, "endDate")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dr := recurring.DateRange{Start: startDate, End: endDate}

	sampleWeeks := recurring.DefaultSampleWeeks
	if weeks, ok := args["sampleWeeks"].(float64); ok && weeks > 0 {
		sampleWeeks = int(weeks)
	}

	participantsRaw, ok := args["participants"].(string)
	if !ok || participantsRaw == "" {
		return mcp.NewToolResultError("participants is required"), nil
	}
	calendars, err := parseScoringCalendars(participantsRaw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Parse failures are reported inline with the candidate that caused
	// them; the remaining candidates are still scored.
	type candidate struct {
		raw      string
		slot     recurring.SlotDescriptor
		parseErr error
	}
	candidates := make([]candidate, 0, len(rawSlots))
	var parseable []recurring.SlotDescriptor
	for _, raw := range rawSlots {
		slot, err := recurring.ParseSlotDescriptor(raw)
		if err != nil {
			candidates = append(candidates, candidate{raw: raw, parseErr: err})
			continue
		}
		candidates = append(candidates, candidate{raw: raw, slot: slot})
		parseable = append(parseable, slot)
	}

	scores, slotErrs := recurring.ScoreSlots(parseable, int(durationMinutes), freq, dr, sampleWeeks, calendars)

	scoreBySlot := make(map[recurring.SlotDescriptor]recurring.SlotScore, len(scores))
	for _, s := range scores {
		scoreBySlot[s.Slot] = s
	}
	errBySlot := make(map[recurring.SlotDescriptor]error, len(slotErrs))
	for _, e := range slotErrs {
		errBySlot[e.Slot] = e.Err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Scored %d candidate slot(s) at %s over %s to %s:\n",
		len(candidates), freq,
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))

	for i, c := range candidates {
		sb.WriteString("\n")
		if c.parseErr != nil {
			fmt.Fprintf(&sb, "%d. %s\n   Error: %v\n", i+1, c.raw, c.parseErr)
			continue
		}
		if err, ok := errBySlot[c.slot]; ok {
			fmt.Fprintf(&sb, "%d. %s\n   Error: %v\n", i+1, c.slot, err)
			continue
		}
		score, ok := scoreBySlot[c.slot]
		if !ok {
			fmt.Fprintf(&sb, "%d. %s\n   Error: no occurrences in range\n", i+1, c.slot)
			continue
		}
		writeSlotScore(&sb, i+1, score)
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func writeSlotScore(sb *strings.Builder, n int, score recurring.SlotScore) {
	fmt.Fprintf(sb, "%d. %s (%d min)\n", n, score.Slot, score.DurationMinutes)
	fmt.Fprintf(sb, "   Availability: %.0f%% (%d occurrence(s), %d conflict(s))\n",
		score.PercentAvailable, score.TotalOccurrences, score.TotalConflicts)

	if len(score.PerPersonConflicts) > 0 {
		names := make([]string, 0, len(score.PerPersonConflicts))
		for name := range score.PerPersonConflicts {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s: %d", name, score.PerPersonConflicts[name]))
		}
		fmt.Fprintf(sb, "   Conflicts by person: %s\n", strings.Join(parts, ", "))
	}

	if len(score.ConflictWeeks) > 0 {
		weeks := make([]string, 0, len(score.ConflictWeeks))
		for _, w := range score.ConflictWeeks {
			weeks = append(weeks, w.Format("2006-01-02"))
		}
		fmt.Fprintf(sb, "   Weeks with conflicts: %s\n", strings.Join(weeks, ", "))
	}

	fmt.Fprintf(sb, "   %s\n", score.TradeoffSummary)
}
