package scheduling_tools

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meetwhen/meetwhen/internal/server"
)

func newTestServerContext(t *testing.T) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background())
	if err != nil {
		t.Fatalf("failed to create server context: %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("expected a result with content")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return tc.Text
}

func TestHandleFindCommonFreeTimeInlineParticipants(t *testing.T) {
	sc := newTestServerContext(t)

	result, err := handleFindCommonFreeTime(context.Background(), callRequest(map[string]interface{}{
		"timeMin": "2025-01-06T09:00:00Z",
		"timeMax": "2025-01-06T17:00:00Z",
		"participants": `[
			{"name":"Alice","busy":[{"start":"2025-01-06T09:00:00Z","end":"2025-01-06T11:00:00Z"}]},
			{"name":"Bob","busy":[{"start":"2025-01-06T14:00:00Z","end":"2025-01-06T15:00:00Z"}]}
		]`,
	}), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}

	text := resultText(t, result)
	if !strings.Contains(text, "Found 2 common free window(s)") {
		t.Errorf("expected 2 free windows, got:\n%s", text)
	}
	if !strings.Contains(text, "11:00") || !strings.Contains(text, "14:00") {
		t.Errorf("expected 11:00-14:00 gap in output, got:\n%s", text)
	}
}

func TestHandleFindCommonFreeTimeReportsUnknown(t *testing.T) {
	sc := newTestServerContext(t)

	result, err := handleFindCommonFreeTime(context.Background(), callRequest(map[string]interface{}{
		"timeMin": "2025-01-06T09:00:00Z",
		"timeMax": "2025-01-06T17:00:00Z",
		"participants": `[
			{"name":"Alice","busy":[]},
			{"name":"Carol","busy":null}
		]`,
	}), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "No calendar data for: Carol") {
		t.Errorf("expected unknown participant warning, got:\n%s", text)
	}
}

func TestHandleFindCommonFreeTimeMinDuration(t *testing.T) {
	sc := newTestServerContext(t)

	// The only gap is 30 minutes; a 60-minute floor must discard it.
	result, err := handleFindCommonFreeTime(context.Background(), callRequest(map[string]interface{}{
		"timeMin": "2025-01-06T09:00:00Z",
		"timeMax": "2025-01-06T12:00:00Z",
		"participants": `[
			{"name":"Alice","busy":[
				{"start":"2025-01-06T09:00:00Z","end":"2025-01-06T10:00:00Z"},
				{"start":"2025-01-06T10:30:00Z","end":"2025-01-06T12:00:00Z"}
			]}
		]`,
		"minDurationMinutes": float64(60),
	}), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "No common free windows") {
		t.Errorf("expected no windows after duration filter, got:\n%s", text)
	}
}

func TestHandleFindCommonFreeTimeRequiresInput(t *testing.T) {
	sc := newTestServerContext(t)

	result, err := handleFindCommonFreeTime(context.Background(), callRequest(map[string]interface{}{
		"timeMin": "2025-01-06T09:00:00Z",
		"timeMax": "2025-01-06T17:00:00Z",
	}), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error when neither participants nor calendars is given")
	}

	// Empty strings for both keys must not slip through to the
	// zero-participant path, which would report the whole window free.
	result, err = handleFindCommonFreeTime(context.Background(), callRequest(map[string]interface{}{
		"timeMin":      "2025-01-06T09:00:00Z",
		"timeMax":      "2025-01-06T17:00:00Z",
		"participants": "",
		"calendars":    "",
	}), sc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error when participants and calendars are both empty")
	}
}

func TestHandleMergeOverrides(t *testing.T) {
	result, err := handleMergeOverrides(context.Background(), callRequest(map[string]interface{}{
		"busy": `[{"start":"2025-01-06T09:00:00Z","end":"2025-01-06T10:00:00Z"}]`,
		"overrides": `[
			{"start":"2025-01-06T09:00:00Z","end":"2025-01-06T09:30:00Z","free":true},
			{"start":"2025-01-06T12:00:00Z","end":"2025-01-06T13:00:00Z","summary":"school run"}
		]`,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}

	text := resultText(t, result)
	if !strings.Contains(text, "2025-01-06T09:30:00Z") {
		t.Errorf("expected free override to carve out 09:00-09:30, got:\n%s", text)
	}
	if !strings.Contains(text, "2025-01-06T12:00:00Z") {
		t.Errorf("expected busy override to appear, got:\n%s", text)
	}
}

func TestHandleMergeOverridesEmptyResult(t *testing.T) {
	result, err := handleMergeOverrides(context.Background(), callRequest(map[string]interface{}{
		"busy":      `[{"start":"2025-01-06T09:00:00Z","end":"2025-01-06T10:00:00Z"}]`,
		"overrides": `[{"start":"2025-01-06T08:00:00Z","end":"2025-01-06T11:00:00Z","free":true}]`,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, `"busy": []`) {
		t.Errorf("expected empty busy list to serialize as [], got:\n%s", text)
	}
}

func TestHandleMergeOverridesValidation(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing busy", map[string]interface{}{"overrides": `[]`}},
		{"missing overrides", map[string]interface{}{"busy": `[]`}},
		{"malformed busy", map[string]interface{}{"busy": `{`, "overrides": `[]`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handleMergeOverrides(context.Background(), callRequest(tt.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !result.IsError {
				t.Error("expected tool error")
			}
		})
	}
}

func TestHandleScoreRecurringSlots(t *testing.T) {
	result, err := handleScoreRecurringSlots(context.Background(), callRequest(map[string]interface{}{
		"slots":           "TU@09:00@UTC",
		"durationMinutes": float64(60),
		"startDate":       "2025-01-06",
		"endDate":         "2025-02-02",
		"participants": `{
			"alice":{"busy":[{"start":"2025-01-07T09:30:00Z","end":"2025-01-07T10:30:00Z"}]},
			"bob":{"busy":[]}
		}`,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}

	text := resultText(t, result)
	if !strings.Contains(text, "TU 09:00 UTC") {
		t.Errorf("expected slot heading, got:\n%s", text)
	}
	if !strings.Contains(text, "4 occurrence(s), 1 conflict(s)") {
		t.Errorf("expected 4 occurrences with 1 conflict, got:\n%s", text)
	}
	if !strings.Contains(text, "alice: 1") || !strings.Contains(text, "bob: 0") {
		t.Errorf("expected per-person tallies, got:\n%s", text)
	}
	if !strings.Contains(text, "Weeks with conflicts: 2025-01-06") {
		t.Errorf("expected conflict week of Jan 6, got:\n%s", text)
	}
}

func TestHandleScoreRecurringSlotsBadCandidateInline(t *testing.T) {
	result, err := handleScoreRecurringSlots(context.Background(), callRequest(map[string]interface{}{
		"slots":           []interface{}{"XX@25:00@UTC", "WE@10:00@UTC"},
		"durationMinutes": float64(30),
		"startDate":       "2025-01-06",
		"endDate":         "2025-01-19",
		"participants":    `{"alice":{"busy":[]}}`,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected per-candidate errors, not a tool error: %s", resultText(t, result))
	}

	text := resultText(t, result)
	if !strings.Contains(text, "1. XX@25:00@UTC") || !strings.Contains(text, "Error:") {
		t.Errorf("expected inline error for first candidate, got:\n%s", text)
	}
	if !strings.Contains(text, "2. WE 10:00 UTC") {
		t.Errorf("expected second candidate to still be scored, got:\n%s", text)
	}
}

func TestHandleScoreRecurringSlotsValidation(t *testing.T) {
	base := func() map[string]interface{} {
		return map[string]interface{}{
			"slots":           "TU@09:00@UTC",
			"durationMinutes": float64(60),
			"startDate":       "2025-01-06",
			"endDate":         "2025-02-02",
			"participants":    `{"alice":{"busy":[]}}`,
		}
	}

	tests := []struct {
		name   string
		mutate func(map[string]interface{})
	}{
		{"missing slots", func(m map[string]interface{}) { delete(m, "slots") }},
		{"missing duration", func(m map[string]interface{}) { delete(m, "durationMinutes") }},
		{"negative duration", func(m map[string]interface{}) { m["durationMinutes"] = float64(-10) }},
		{"bad frequency", func(m map[string]interface{}) { m["frequency"] = "DAILY" }},
		{"bad start date", func(m map[string]interface{}) { m["startDate"] = "Jan 6" }},
		{"missing participants", func(m map[string]interface{}) { delete(m, "participants") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := base()
			tt.mutate(args)
			result, err := handleScoreRecurringSlots(context.Background(), callRequest(args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !result.IsError {
				t.Error("expected tool error")
			}
		})
	}
}
