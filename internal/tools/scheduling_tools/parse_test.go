package scheduling_tools

import (
	"strings"
	"testing"
	"time"

	"github.com/meetwhen/meetwhen/internal/availability"
)

func TestParseSpans(t *testing.T) {
	spans, err := parseSpans(`[
		{"start":"2025-01-06T09:00:00Z","end":"2025-01-06T10:00:00Z"},
		{"start":"2025-01-06T14:00:00Z","end":"2025-01-06T15:30:00Z"}
	]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[1].Duration() != 90*time.Minute {
		t.Errorf("expected 90m duration, got %s", spans[1].Duration())
	}
}

func TestParseSpansErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"invalid json", `{"start":`},
		{"bad timestamp", `[{"start":"yesterday","end":"2025-01-06T10:00:00Z"}]`},
		{"end before start", `[{"start":"2025-01-06T10:00:00Z","end":"2025-01-06T09:00:00Z"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseSpans(tt.raw); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestParseParticipants(t *testing.T) {
	participants, err := parseParticipants(`[
		{"name":"Alice","busy":[{"start":"2025-01-06T09:00:00Z","end":"2025-01-06T10:00:00Z"}]},
		{"name":"Bob","busy":[]},
		{"name":"Carol","busy":null}
	]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(participants) != 3 {
		t.Fatalf("expected 3 participants, got %d", len(participants))
	}

	if participants[0].Status != availability.StatusKnown || len(participants[0].Busy) != 1 {
		t.Errorf("Alice: expected known with 1 busy span, got %s with %d", participants[0].Status, len(participants[0].Busy))
	}
	if participants[1].Status != availability.StatusKnown || len(participants[1].Busy) != 0 {
		t.Errorf("Bob: expected known with empty busy list, got %s with %d", participants[1].Status, len(participants[1].Busy))
	}
	if participants[2].Status != availability.StatusUnknown {
		t.Errorf("Carol: expected unknown status, got %s", participants[2].Status)
	}
}

func TestParseParticipantsErrors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantMsg string
	}{
		{"missing name", `[{"busy":[]}]`, "name is required"},
		{"bad busy span", `[{"name":"Alice","busy":[{"start":"nope","end":"2025-01-06T10:00:00Z"}]}]`, "participants[0].busy[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseParticipants(tt.raw)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error containing %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestParseOverrides(t *testing.T) {
	overrides, err := parseOverrides(`[
		{"start":"2025-01-06T12:00:00Z","end":"2025-01-06T13:00:00Z","summary":"focus block"},
		{"start":"2025-01-06T09:00:00Z","end":"2025-01-06T09:30:00Z","free":true}
	]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(overrides) != 2 {
		t.Fatalf("expected 2 overrides, got %d", len(overrides))
	}
	if overrides[0].Free || overrides[0].Summary != "focus block" {
		t.Errorf("unexpected first override: %+v", overrides[0])
	}
	if !overrides[1].Free {
		t.Error("expected second override to be a free correction")
	}
}

func TestParseScoringCalendars(t *testing.T) {
	calendars, err := parseScoringCalendars(`{
		"alice":{"busy":[{"start":"2025-01-07T14:00:00Z","end":"2025-01-07T15:00:00Z"}]},
		"bob":{"busy":[]},
		"carol":null
	}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calendars) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(calendars))
	}
	if calendars["alice"] == nil || len(calendars["alice"].Busy) != 1 {
		t.Errorf("alice: expected known calendar with 1 busy span, got %+v", calendars["alice"])
	}
	if calendars["bob"] == nil || calendars["bob"].Busy == nil {
		t.Error("bob: an empty busy list must stay known, not become unknown")
	}
	if calendars["carol"] != nil {
		t.Errorf("carol: expected nil (unknown) calendar, got %+v", calendars["carol"])
	}
}

func TestParseTimeArg(t *testing.T) {
	args := map[string]interface{}{"timeMin": "2025-01-06T09:00:00Z"}
	got, err := parseTimeArg(args, "timeMin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Hour() != 9 {
		t.Errorf("expected 09:00, got %s", got)
	}

	if _, err := parseTimeArg(map[string]interface{}{}, "timeMin"); err == nil || !strings.Contains(err.Error(), "timeMin is required") {
		t.Errorf("expected required error, got %v", err)
	}
	if _, err := parseTimeArg(map[string]interface{}{"timeMin": "Jan 6"}, "timeMin"); err == nil {
		t.Error("expected format error, got nil")
	}
}

func TestParseDateArg(t *testing.T) {
	args := map[string]interface{}{"startDate": "2025-01-06"}
	got, err := parseDateArg(args, "startDate")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Day() != 6 {
		t.Errorf("expected day 6, got %s", got)
	}

	if _, err := parseDateArg(map[string]interface{}{"startDate": "06.01.2025"}, "startDate"); err == nil || !strings.Contains(err.Error(), "YYYY-MM-DD") {
		t.Errorf("expected format error naming YYYY-MM-DD, got %v", err)
	}
}
