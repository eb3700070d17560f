package recurring

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/meetwhen/meetwhen/internal/interval"
)

// DefaultSampleWeeks is the enumeration cap surfaces apply when the caller
// does not choose one. A cap <= 0 disables clamping entirely; that is a
// deliberate escape hatch for exhaustive analysis over long ranges.
const DefaultSampleWeeks = 12

// parseClockTime parses a strict "HH:MM" local clock time.
func parseClockTime(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("malformed time %q (want HH:MM)", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("malformed time %q: hour out of range", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("malformed time %q: minute out of range", s)
	}
	return hour, minute, nil
}

// mondayOfWeek returns the ISO Monday-start date (midnight UTC) of the week
// containing t, computed from t's own calendar date.
func mondayOfWeek(t time.Time) time.Time {
	y, m, d := t.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	back := (int(t.Weekday()) + 6) % 7
	return date.AddDate(0, 0, -back)
}

// EnumerateOccurrences expands a candidate slot into concrete occurrences
// within the date range. When sampleWeeks > 0 the effective end date is
// clamped to startDate + sampleWeeks*7 days to bound enumeration cost.
//
// The expansion anchors an RRULE at a DTSTART built with zoned-time
// arithmetic in the slot's zone: the first date on or after the range start
// whose weekday matches the slot, at the slot's wall-clock time. Stepping is
// 7 or 14 days in local time, so a DST transition changes the UTC instant
// but never the local time of day.
func EnumerateOccurrences(slot SlotDescriptor, durationMinutes int, freq Frequency, dr DateRange, sampleWeeks int) ([]Occurrence, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("durationMinutes must be positive, got %d", durationMinutes)
	}
	step, err := freq.stepWeeks()
	if err != nil {
		return nil, err
	}
	hour, minute, err := parseClockTime(slot.Time)
	if err != nil {
		return nil, err
	}
	wd, err := slot.Day.Time()
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(slot.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", slot.Timezone, err)
	}

	startY, startM, startD := dr.Start.Date()
	endY, endM, endD := dr.End.Date()
	startDate := time.Date(startY, startM, startD, 0, 0, 0, 0, loc)
	endDate := time.Date(endY, endM, endD, 0, 0, 0, 0, loc)
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("date range end %s is before start %s",
			endDate.Format("2006-01-02"), startDate.Format("2006-01-02"))
	}
	if sampleWeeks > 0 {
		capped := startDate.AddDate(0, 0, sampleWeeks*7)
		if capped.Before(endDate) {
			endDate = capped
		}
	}

	// First date on/after the range start matching the slot's weekday.
	anchor := startDate
	for anchor.Weekday() != wd {
		anchor = anchor.AddDate(0, 0, 1)
	}

	dtstart := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), hour, minute, 0, 0, loc)
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Interval:  step,
		Byweekday: []rrule.Weekday{rruleByCode[slot.Day]},
		Dtstart:   dtstart,
	})
	if err != nil {
		return nil, fmt.Errorf("building recurrence rule for %s: %w", slot, err)
	}

	// The range end is a calendar date; occurrences on that date count.
	until := time.Date(endDate.Year(), endDate.Month(), endDate.Day(), 23, 59, 59, 0, loc)
	starts := rule.Between(dtstart, until, true)

	duration := time.Duration(durationMinutes) * time.Minute
	occurrences := make([]Occurrence, 0, len(starts))
	for _, s := range starts {
		occurrences = append(occurrences, Occurrence{
			Span:    interval.Span{Start: s, End: s.Add(duration)},
			WeekKey: mondayOfWeek(s),
		})
	}
	return occurrences, nil
}
