package scheduling_tools

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/meetwhen/meetwhen/internal/availability"
	"github.com/meetwhen/meetwhen/internal/interval"
	"github.com/meetwhen/meetwhen/internal/recurring"
)

// spanInput is the wire form of a busy interval: RFC3339 start and end.
type spanInput struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (s spanInput) toSpan() (interval.Span, error) {
	start, err := time.Parse(time.RFC3339, s.Start)
	if err != nil {
		return interval.Span{}, fmt.Errorf("invalid start %q: %w", s.Start, err)
	}
	end, err := time.Parse(time.RFC3339, s.End)
	if err != nil {
		return interval.Span{}, fmt.Errorf("invalid end %q: %w", s.End, err)
	}
	return interval.NewSpan(start, end)
}

// participantInput is the wire form of an inline participant calendar.
// A null (or absent) busy list marks the calendar as unknown, which is
// distinct from an empty-but-known one.
type participantInput struct {
	Name string       `json:"name"`
	Busy *[]spanInput `json:"busy"`
}

// overrideInput is the wire form of a manual override entry.
type overrideInput struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Summary string `json:"summary"`
	Free    bool   `json:"free"`
}

// parseSpans decodes a JSON array of busy intervals.
func parseSpans(raw string) ([]interval.Span, error) {
	var inputs []spanInput
	if err := json.Unmarshal([]byte(raw), &inputs); err != nil {
		return nil, fmt.Errorf("invalid busy list: %w", err)
	}
	spans := make([]interval.Span, 0, len(inputs))
	for i, in := range inputs {
		span, err := in.toSpan()
		if err != nil {
			return nil, fmt.Errorf("busy[%d]: %w", i, err)
		}
		spans = append(spans, span)
	}
	return spans, nil
}

// parseParticipants decodes inline participant calendars.
func parseParticipants(raw string) ([]availability.Participant, error) {
	var inputs []participantInput
	if err := json.Unmarshal([]byte(raw), &inputs); err != nil {
		return nil, fmt.Errorf("invalid participants list: %w", err)
	}

	participants := make([]availability.Participant, 0, len(inputs))
	for i, in := range inputs {
		if in.Name == "" {
			return nil, fmt.Errorf("participants[%d]: name is required", i)
		}
		p := availability.Participant{
			ID:   in.Name,
			Name: in.Name,
		}
		if in.Busy == nil {
			p.Status = availability.StatusUnknown
		} else {
			p.Status = availability.StatusKnown
			for j, spanIn := range *in.Busy {
				span, err := spanIn.toSpan()
				if err != nil {
					return nil, fmt.Errorf("participants[%d].busy[%d]: %w", i, j, err)
				}
				p.Busy = append(p.Busy, span)
			}
		}
		participants = append(participants, p)
	}
	return participants, nil
}

// parseOverrides decodes manual override entries.
func parseOverrides(raw string) ([]availability.Override, error) {
	var inputs []overrideInput
	if err := json.Unmarshal([]byte(raw), &inputs); err != nil {
		return nil, fmt.Errorf("invalid overrides list: %w", err)
	}

	overrides := make([]availability.Override, 0, len(inputs))
	for i, in := range inputs {
		span, err := spanInput{Start: in.Start, End: in.End}.toSpan()
		if err != nil {
			return nil, fmt.Errorf("overrides[%d]: %w", i, err)
		}
		overrides = append(overrides, availability.Override{
			Span:    span,
			Summary: in.Summary,
			Free:    in.Free,
		})
	}
	return overrides, nil
}

// parseScoringCalendars decodes the participant calendars for slot scoring.
// A JSON null value marks a participant whose calendar is unknown.
func parseScoringCalendars(raw string) (map[string]*recurring.ParticipantCalendar, error) {
	var inputs map[string]*struct {
		Busy []spanInput `json:"busy"`
	}
	if err := json.Unmarshal([]byte(raw), &inputs); err != nil {
		return nil, fmt.Errorf("invalid participants map: %w", err)
	}

	calendars := make(map[string]*recurring.ParticipantCalendar, len(inputs))
	for name, in := range inputs {
		if name == "" {
			return nil, fmt.Errorf("participants map contains an empty name")
		}
		if in == nil {
			calendars[name] = nil
			continue
		}
		cal := &recurring.ParticipantCalendar{Name: name, Busy: []interval.Span{}}
		for j, spanIn := range in.Busy {
			span, err := spanIn.toSpan()
			if err != nil {
				return nil, fmt.Errorf("participant %q busy[%d]: %w", name, j, err)
			}
			cal.Busy = append(cal.Busy, span)
		}
		calendars[name] = cal
	}
	return calendars, nil
}

// parseTimeArg parses a required RFC3339 time argument.
func parseTimeArg(args map[string]interface{}, name string) (time.Time, error) {
	raw, ok := args[name].(string)
	if !ok || raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s format: %v", name, err)
	}
	return t, nil
}

// parseDateArg parses a required YYYY-MM-DD date argument.
func parseDateArg(args map[string]interface{}, name string) (time.Time, error) {
	raw, ok := args[name].(string)
	if !ok || raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s format (want YYYY-MM-DD): %v", name, err)
	}
	return t, nil
}
