package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/meetwhen/meetwhen/internal/availability"
	"github.com/meetwhen/meetwhen/internal/ics"
	"github.com/meetwhen/meetwhen/internal/interval"
	"github.com/meetwhen/meetwhen/internal/recurring"
)

// busySpanJSON is the on-disk form of a busy interval: RFC3339 start and end.
type busySpanJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (b busySpanJSON) toSpan() (interval.Span, error) {
	start, err := time.Parse(time.RFC3339, b.Start)
	if err != nil {
		return interval.Span{}, fmt.Errorf("invalid start %q: %w", b.Start, err)
	}
	end, err := time.Parse(time.RFC3339, b.End)
	if err != nil {
		return interval.Span{}, fmt.Errorf("invalid end %q: %w", b.End, err)
	}
	return interval.NewSpan(start, end)
}

// overrideJSON is the on-disk form of a manual override entry.
type overrideJSON struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Summary string `json:"summary"`
	Free    bool   `json:"free"`
}

// loadJSONCalendars reads a calendars file mapping participant name to a
// busy span list. A JSON null value marks that participant's calendar as
// unknown rather than empty.
func loadJSONCalendars(path string) ([]availability.Participant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendars file: %w", err)
	}

	var raw map[string]*[]busySpanJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid calendars file %s: %w", path, err)
	}

	participants := make([]availability.Participant, 0, len(raw))
	for name, busy := range raw {
		p := availability.Participant{ID: name, Name: name}
		if busy == nil {
			p.Status = availability.StatusUnknown
		} else {
			p.Status = availability.StatusKnown
			for i, b := range *busy {
				span, err := b.toSpan()
				if err != nil {
					return nil, fmt.Errorf("%s: %s busy[%d]: %w", path, name, i, err)
				}
				p.Busy = append(p.Busy, span)
			}
		}
		participants = append(participants, p)
	}
	sort.Slice(participants, func(i, j int) bool { return participants[i].Name < participants[j].Name })
	return participants, nil
}

// loadParticipants assembles the participant set from an optional JSON
// calendars file and any number of .ics files. Each .ics file contributes
// one participant named after the calendar.
func loadParticipants(jsonPath string, icsPaths []string) ([]availability.Participant, error) {
	var participants []availability.Participant

	if jsonPath != "" {
		fromJSON, err := loadJSONCalendars(jsonPath)
		if err != nil {
			return nil, err
		}
		participants = append(participants, fromJSON...)
	}

	for _, path := range icsPaths {
		p, err := ics.LoadParticipant(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		participants = append(participants, p)
	}

	if len(participants) == 0 {
		return nil, fmt.Errorf("no participant calendars given (use --calendars and/or --ics)")
	}
	return participants, nil
}

// loadOverrides reads an overrides file mapping participant name to a list
// of manual override entries.
func loadOverrides(path string) (map[string][]availability.Override, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read overrides file: %w", err)
	}

	var raw map[string][]overrideJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid overrides file %s: %w", path, err)
	}

	overrides := make(map[string][]availability.Override, len(raw))
	for name, entries := range raw {
		for i, in := range entries {
			span, err := busySpanJSON{Start: in.Start, End: in.End}.toSpan()
			if err != nil {
				return nil, fmt.Errorf("%s: %s overrides[%d]: %w", path, name, i, err)
			}
			overrides[name] = append(overrides[name], availability.Override{
				Span:    span,
				Summary: in.Summary,
				Free:    in.Free,
			})
		}
	}
	return overrides, nil
}

// toScoringCalendars converts the participant set into the map form the
// recurring scorer takes. Unknown calendars become nil entries.
func toScoringCalendars(participants []availability.Participant) map[string]*recurring.ParticipantCalendar {
	calendars := make(map[string]*recurring.ParticipantCalendar, len(participants))
	for _, p := range participants {
		if p.Status == availability.StatusUnknown {
			calendars[p.ID] = nil
			continue
		}
		busy := p.Busy
		if busy == nil {
			busy = []interval.Span{}
		}
		calendars[p.ID] = &recurring.ParticipantCalendar{Name: p.Name, Busy: busy}
	}
	return calendars
}

// applyOverrides merges per-participant overrides into the busy lists.
// Overrides for names without a matching participant are ignored; overrides
// on an unknown calendar do not make it known.
func applyOverrides(participants []availability.Participant, overrides map[string][]availability.Override) {
	for i := range participants {
		entries, ok := overrides[participants[i].Name]
		if !ok || participants[i].Status != availability.StatusKnown {
			continue
		}
		participants[i].Busy = availability.MergeOverrides(participants[i].Busy, entries)
	}
}
