package ics

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ical "github.com/arran4/golang-ical"

	"github.com/meetwhen/meetwhen/internal/availability"
	"github.com/meetwhen/meetwhen/internal/interval"
	"github.com/meetwhen/meetwhen/internal/logging"
)

// ParseBusy parses an ICS payload into a participant whose busy spans are the
// timed VEVENTs of the calendar. All-day and malformed events are skipped.
func ParseBusy(name string, r io.Reader) (availability.Participant, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return availability.Participant{}, fmt.Errorf("failed to parse ICS calendar %s: %w", name, err)
	}

	var busy []interval.Span
	skipped := 0

	for _, ve := range cal.Events() {
		span, ok := eventSpan(ve)
		if !ok {
			skipped++
			continue
		}
		busy = append(busy, span)
	}

	if skipped > 0 {
		slog.Warn("skipped ICS events without usable times",
			logging.Operation("parse_calendar"),
			logging.ParticipantHash(name),
			slog.Int("skipped", skipped),
		)
	}

	return availability.Participant{
		ID:     name,
		Name:   name,
		Busy:   busy,
		Status: availability.StatusKnown,
	}, nil
}

// LoadParticipant reads an .ics file and returns a participant named after the
// file's base name (without extension).
func LoadParticipant(path string) (availability.Participant, error) {
	f, err := os.Open(path)
	if err != nil {
		return availability.Participant{}, fmt.Errorf("failed to open ICS file: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ParseBusy(name, f)
}

// eventSpan extracts the busy span of a timed VEVENT.
// Returns false for all-day events and events with missing or invalid times.
func eventSpan(ve *ical.VEvent) (interval.Span, bool) {
	if isAllDay(ve) {
		return interval.Span{}, false
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return interval.Span{}, false
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return interval.Span{}, false
	}

	span := interval.Span{Start: start, End: end}
	if !span.IsValid() {
		return interval.Span{}, false
	}
	return span, true
}

// isAllDay detects all-day events by inspecting the DTSTART value format:
// VALUE=DATE parameter or a date-only value without a time component.
func isAllDay(ve *ical.VEvent) bool {
	prop := ve.GetProperty(ical.ComponentPropertyDtStart)
	if prop == nil {
		return false
	}

	if params := prop.ICalParameters; params != nil {
		if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			return true
		}
	}

	return !strings.Contains(prop.Value, "T")
}
