package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/meetwhen/meetwhen/internal/availability"
	"github.com/meetwhen/meetwhen/internal/interval"
)

func mustWindow(t *testing.T, from, to string) interval.Span {
	t.Helper()
	start, err := time.Parse(time.RFC3339, from)
	if err != nil {
		t.Fatalf("bad test time %q: %v", from, err)
	}
	end, err := time.Parse(time.RFC3339, to)
	if err != nil {
		t.Fatalf("bad test time %q: %v", to, err)
	}
	span, err := interval.NewSpan(start, end)
	if err != nil {
		t.Fatalf("bad test span: %v", err)
	}
	return span
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadJSONCalendars(t *testing.T) {
	path := writeTempFile(t, "team.json", `{
		"alice": [{"start":"2025-01-06T09:00:00Z","end":"2025-01-06T10:00:00Z"}],
		"bob": [],
		"carol": null
	}`)

	participants, err := loadJSONCalendars(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(participants) != 3 {
		t.Fatalf("expected 3 participants, got %d", len(participants))
	}

	// Sorted by name for deterministic output.
	if participants[0].Name != "alice" || participants[1].Name != "bob" || participants[2].Name != "carol" {
		t.Errorf("expected alice, bob, carol order, got %v", participants)
	}
	if participants[0].Status != availability.StatusKnown || len(participants[0].Busy) != 1 {
		t.Errorf("alice: expected known with 1 busy span, got %+v", participants[0])
	}
	if participants[1].Status != availability.StatusKnown {
		t.Errorf("bob: an empty busy list must stay known, got %s", participants[1].Status)
	}
	if participants[2].Status != availability.StatusUnknown {
		t.Errorf("carol: expected unknown status, got %s", participants[2].Status)
	}
}

func TestLoadJSONCalendarsErrors(t *testing.T) {
	if _, err := loadJSONCalendars(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := writeTempFile(t, "bad.json", `{"alice": [{"start":"nope","end":"2025-01-06T10:00:00Z"}]}`)
	if _, err := loadJSONCalendars(bad); err == nil {
		t.Error("expected error for malformed timestamp")
	}
}

func TestLoadParticipantsRequiresInput(t *testing.T) {
	if _, err := loadParticipants("", nil); err == nil {
		t.Error("expected error when no calendar sources are given")
	}
}

func TestApplyOverrides(t *testing.T) {
	participants := []availability.Participant{
		{
			ID: "alice", Name: "alice", Status: availability.StatusKnown,
			Busy: []interval.Span{mustWindow(t, "2025-01-06T09:00:00Z", "2025-01-06T10:00:00Z")},
		},
		{ID: "carol", Name: "carol", Status: availability.StatusUnknown},
	}

	path := writeTempFile(t, "overrides.json", `{
		"alice": [{"start":"2025-01-06T09:00:00Z","end":"2025-01-06T09:30:00Z","free":true}],
		"carol": [{"start":"2025-01-06T12:00:00Z","end":"2025-01-06T13:00:00Z"}]
	}`)
	overrides, err := loadOverrides(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	applyOverrides(participants, overrides)

	if len(participants[0].Busy) != 1 || !participants[0].Busy[0].Start.Equal(mustWindow(t, "2025-01-06T09:30:00Z", "2025-01-06T10:00:00Z").Start) {
		t.Errorf("alice: expected free override to shrink busy to 09:30-10:00, got %v", participants[0].Busy)
	}

	// Overrides never promote an unknown calendar to known.
	if participants[1].Status != availability.StatusUnknown || len(participants[1].Busy) != 0 {
		t.Errorf("carol: expected untouched unknown calendar, got %+v", participants[1])
	}
}

func TestToScoringCalendars(t *testing.T) {
	participants := []availability.Participant{
		{
			ID: "alice", Name: "alice", Status: availability.StatusKnown,
			Busy: []interval.Span{mustWindow(t, "2025-01-06T09:00:00Z", "2025-01-06T10:00:00Z")},
		},
		{ID: "bob", Name: "bob", Status: availability.StatusKnown},
		{ID: "carol", Name: "carol", Status: availability.StatusUnknown},
	}

	calendars := toScoringCalendars(participants)

	if calendars["alice"] == nil || len(calendars["alice"].Busy) != 1 {
		t.Errorf("alice: expected known calendar with 1 busy span, got %+v", calendars["alice"])
	}
	if calendars["bob"] == nil || calendars["bob"].Busy == nil {
		t.Error("bob: expected known calendar with non-nil empty busy list")
	}
	if calendars["carol"] != nil {
		t.Errorf("carol: expected nil (unknown) entry, got %+v", calendars["carol"])
	}
}
