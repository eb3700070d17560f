package recurring

import (
	"sort"
	"time"
)

// ScoreSlots scores each candidate slot independently against the
// participant calendars. The calendars map is keyed by a stable participant
// identifier; a nil value means that participant's calendar is unknown.
//
// Scores come back in input order; ranking is the caller's concern. A
// candidate that enumerates to zero occurrences is skipped entirely. A
// candidate with malformed inputs (bad clock time, unknown zone) yields a
// SlotError and does not abort the rest of the batch. Unsupported
// frequencies fail every candidate the same way and surface on each.
func ScoreSlots(slots []SlotDescriptor, durationMinutes int, freq Frequency, dr DateRange, sampleWeeks int, calendars map[string]*ParticipantCalendar) ([]SlotScore, []SlotError) {
	var scores []SlotScore
	var errs []SlotError

	for _, slot := range slots {
		occurrences, err := EnumerateOccurrences(slot, durationMinutes, freq, dr, sampleWeeks)
		if err != nil {
			errs = append(errs, SlotError{Slot: slot, Err: err})
			continue
		}
		if len(occurrences) == 0 {
			continue
		}
		scores = append(scores, scoreSlot(slot, durationMinutes, occurrences, calendars))
	}
	return scores, errs
}

// scoreSlot tallies conflicts for one candidate. Iteration over the
// calendar map is by sorted participant ID so tallies, week sets and
// summaries are deterministic.
func scoreSlot(slot SlotDescriptor, durationMinutes int, occurrences []Occurrence, calendars map[string]*ParticipantCalendar) SlotScore {
	ids := make([]string, 0, len(calendars))
	for id := range calendars {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var knownIDs, knownNames, unknownNames []string
	for _, id := range ids {
		if calendars[id] == nil {
			unknownNames = append(unknownNames, id)
			continue
		}
		knownIDs = append(knownIDs, id)
		name := calendars[id].Name
		if name == "" {
			name = id
		}
		knownNames = append(knownNames, name)
	}

	perPerson := make(map[string]int, len(knownIDs))
	for _, id := range knownIDs {
		perPerson[id] = 0
	}

	totalConflicts := 0
	weekSet := make(map[time.Time]struct{})
	for _, occ := range occurrences {
		occConflicted := false
		for _, id := range knownIDs {
			// One conflict per occurrence per person, no matter how many
			// busy blocks overlap it.
			for _, busy := range calendars[id].Busy {
				if busy.Overlaps(occ.Span) {
					perPerson[id]++
					totalConflicts++
					occConflicted = true
					break
				}
			}
		}
		if occConflicted {
			weekSet[occ.WeekKey] = struct{}{}
		}
	}

	conflictWeeks := make([]time.Time, 0, len(weekSet))
	for wk := range weekSet {
		conflictWeeks = append(conflictWeeks, wk)
	}
	sort.Slice(conflictWeeks, func(i, j int) bool { return conflictWeeks[i].Before(conflictWeeks[j]) })
	if len(conflictWeeks) == 0 {
		conflictWeeks = nil
	}

	denominator := len(occurrences) * len(knownIDs)
	if denominator < 1 {
		denominator = 1
	}
	available := len(occurrences)*len(knownIDs) - totalConflicts
	if available < 0 {
		available = 0
	}
	percent := float64(available) / float64(denominator) * 100

	// An unscored participant must never make a slot look favorable.
	if len(unknownNames) > 0 {
		percent = 0
	}

	// Summary works on display names; tallies stay keyed by stable ID.
	perPersonByName := make(map[string]int, len(perPerson))
	for i, id := range knownIDs {
		perPersonByName[knownNames[i]] = perPerson[id]
	}

	return SlotScore{
		Slot:                slot,
		DurationMinutes:     durationMinutes,
		TotalOccurrences:    len(occurrences),
		TotalConflicts:      totalConflicts,
		PerPersonConflicts:  perPerson,
		PercentAvailable:    percent,
		ConflictWeeks:       conflictWeeks,
		TradeoffSummary:     renderTradeoffSummary(knownNames, unknownNames, perPersonByName, totalConflicts, len(occurrences)),
		UnknownParticipants: unknownNames,
	}
}
