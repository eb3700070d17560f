package recurring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetwhen/meetwhen/internal/interval"
)

func TestScoreSlotsConflictCounting(t *testing.T) {
	// Four weekly Monday 10:00 UTC occurrences; Alice is busy during the
	// first two.
	slot := SlotDescriptor{Day: Monday, Time: "10:00", Timezone: "UTC"}
	dr := DateRange{Start: date(2025, time.January, 6), End: date(2025, time.January, 31)}

	busy := []interval.Span{
		{Start: time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC), End: time.Date(2025, 1, 6, 10, 30, 0, 0, time.UTC)},
		{Start: time.Date(2025, 1, 13, 10, 0, 0, 0, time.UTC), End: time.Date(2025, 1, 13, 11, 0, 0, 0, time.UTC)},
	}
	calendars := map[string]*ParticipantCalendar{
		"alice": {Name: "Alice", Busy: busy},
	}

	scores, errs := ScoreSlots([]SlotDescriptor{slot}, 60, FrequencyWeekly, dr, 0, calendars)
	require.Empty(t, errs)
	require.Len(t, scores, 1)

	s := scores[0]
	assert.Equal(t, 4, s.TotalOccurrences)
	assert.Equal(t, 2, s.TotalConflicts)
	assert.Equal(t, 2, s.PerPersonConflicts["alice"])
	assert.InDelta(t, 50.0, s.PercentAvailable, 0.001, "(4*1-2)/(4*1)*100")
	assert.Equal(t, []time.Time{date(2025, time.January, 6), date(2025, time.January, 13)}, s.ConflictWeeks)
}

func TestScoreSlotsOneConflictPerOccurrencePerPerson(t *testing.T) {
	slot := SlotDescriptor{Day: Monday, Time: "10:00", Timezone: "UTC"}
	dr := DateRange{Start: date(2025, time.January, 6), End: date(2025, time.January, 6)}

	// Two distinct busy blocks inside the same occurrence count once.
	calendars := map[string]*ParticipantCalendar{
		"alice": {Name: "Alice", Busy: []interval.Span{
			{Start: time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC), End: time.Date(2025, 1, 6, 10, 15, 0, 0, time.UTC)},
			{Start: time.Date(2025, 1, 6, 10, 30, 0, 0, time.UTC), End: time.Date(2025, 1, 6, 10, 45, 0, 0, time.UTC)},
		}},
	}

	scores, errs := ScoreSlots([]SlotDescriptor{slot}, 60, FrequencyWeekly, dr, 0, calendars)
	require.Empty(t, errs)
	require.Len(t, scores, 1)
	assert.Equal(t, 1, scores[0].TotalConflicts)
	assert.Equal(t, 1, scores[0].PerPersonConflicts["alice"])
	assert.Len(t, scores[0].ConflictWeeks, 1)
}

func TestScoreSlotsHalfOpenOverlap(t *testing.T) {
	slot := SlotDescriptor{Day: Monday, Time: "10:00", Timezone: "UTC"}
	dr := DateRange{Start: date(2025, time.January, 6), End: date(2025, time.January, 6)}

	// Busy block ending exactly at the occurrence start never conflicts.
	calendars := map[string]*ParticipantCalendar{
		"alice": {Name: "Alice", Busy: []interval.Span{
			{Start: time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC), End: time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)},
		}},
	}

	scores, errs := ScoreSlots([]SlotDescriptor{slot}, 60, FrequencyWeekly, dr, 0, calendars)
	require.Empty(t, errs)
	require.Len(t, scores, 1)
	assert.Zero(t, scores[0].TotalConflicts)
	assert.InDelta(t, 100.0, scores[0].PercentAvailable, 0.001)
}

func TestScoreSlotsUnknownForcesZero(t *testing.T) {
	slot := SlotDescriptor{Day: Monday, Time: "10:00", Timezone: "UTC"}
	dr := DateRange{Start: date(2025, time.January, 6), End: date(2025, time.January, 31)}

	calendars := map[string]*ParticipantCalendar{
		"alice": {Name: "Alice"}, // known, conflict-free
		"bob":   nil,             // unknown
	}

	scores, errs := ScoreSlots([]SlotDescriptor{slot}, 60, FrequencyWeekly, dr, 0, calendars)
	require.Empty(t, errs)
	require.Len(t, scores, 1)

	s := scores[0]
	assert.Zero(t, s.PercentAvailable, "unknown participant must never make a slot look favorable")
	assert.Equal(t, []string{"bob"}, s.UnknownParticipants)
	assert.Zero(t, s.TotalConflicts)
	assert.Contains(t, s.TradeoffSummary, "waiting on availability from bob")
}

func TestScoreSlotsZeroKnownParticipants(t *testing.T) {
	slot := SlotDescriptor{Day: Monday, Time: "10:00", Timezone: "UTC"}
	dr := DateRange{Start: date(2025, time.January, 6), End: date(2025, time.January, 31)}

	t.Run("empty map", func(t *testing.T) {
		scores, errs := ScoreSlots([]SlotDescriptor{slot}, 60, FrequencyWeekly, dr, 0, nil)
		require.Empty(t, errs)
		require.Len(t, scores, 1)
		assert.Equal(t, "no participant calendars provided", scores[0].TradeoffSummary)
		assert.Zero(t, scores[0].PercentAvailable, "max(1, denominator) guards the division")
	})

	t.Run("all unknown", func(t *testing.T) {
		calendars := map[string]*ParticipantCalendar{"alice": nil, "bob": nil}
		scores, errs := ScoreSlots([]SlotDescriptor{slot}, 60, FrequencyWeekly, dr, 0, calendars)
		require.Empty(t, errs)
		require.Len(t, scores, 1)
		assert.Zero(t, scores[0].PercentAvailable)
		assert.Equal(t, "need availability from alice, bob before this can be scored", scores[0].TradeoffSummary)
	})
}

func TestScoreSlotsDominantBlockerSummary(t *testing.T) {
	slot := SlotDescriptor{Day: Monday, Time: "10:00", Timezone: "UTC"}
	dr := DateRange{Start: date(2025, time.January, 6), End: date(2025, time.March, 14)}

	occ, err := EnumerateOccurrences(slot, 60, FrequencyWeekly, dr, 0)
	require.NoError(t, err)
	require.Len(t, occ, 10)

	// Alice conflicts with 3 of 10 occurrences, Bob with 1: rates 0.30 and
	// 0.10, so Alice is the dominant blocker.
	aliceBusy := []interval.Span{occ[0].Span, occ[2].Span, occ[4].Span}
	bobBusy := []interval.Span{occ[1].Span}
	calendars := map[string]*ParticipantCalendar{
		"alice": {Name: "Alice", Busy: aliceBusy},
		"bob":   {Name: "Bob", Busy: bobBusy},
	}

	scores, errs := ScoreSlots([]SlotDescriptor{slot}, 60, FrequencyWeekly, dr, 0, calendars)
	require.Empty(t, errs)
	require.Len(t, scores, 1)
	assert.Equal(t, "Alice would miss roughly one in four meetings", scores[0].TradeoffSummary)
}

func TestScoreSlotsBadCandidateDoesNotAbortBatch(t *testing.T) {
	good := SlotDescriptor{Day: Monday, Time: "10:00", Timezone: "UTC"}
	bad := SlotDescriptor{Day: Tuesday, Time: "ten", Timezone: "UTC"}
	dr := DateRange{Start: date(2025, time.January, 6), End: date(2025, time.January, 31)}

	scores, errs := ScoreSlots([]SlotDescriptor{bad, good}, 60, FrequencyWeekly, dr, 0,
		map[string]*ParticipantCalendar{"alice": {Name: "Alice"}})
	require.Len(t, errs, 1)
	assert.Equal(t, bad, errs[0].Slot)
	assert.ErrorContains(t, errs[0], "malformed time")
	require.Len(t, scores, 1)
	assert.Equal(t, good, scores[0].Slot)
}

func TestScoreSlotsZeroOccurrencesSkipsCandidate(t *testing.T) {
	// A Sunday slot in a Monday-to-Friday range enumerates nothing.
	slot := SlotDescriptor{Day: Sunday, Time: "10:00", Timezone: "UTC"}
	dr := DateRange{Start: date(2025, time.January, 6), End: date(2025, time.January, 10)}

	scores, errs := ScoreSlots([]SlotDescriptor{slot}, 60, FrequencyWeekly, dr, 0,
		map[string]*ParticipantCalendar{"alice": {Name: "Alice"}})
	assert.Empty(t, errs)
	assert.Empty(t, scores)
}

func TestScoreSlotsInputOrderPreserved(t *testing.T) {
	slots := []SlotDescriptor{
		{Day: Friday, Time: "16:00", Timezone: "UTC"},
		{Day: Monday, Time: "09:00", Timezone: "UTC"},
	}
	dr := DateRange{Start: date(2025, time.January, 6), End: date(2025, time.January, 31)}

	scores, errs := ScoreSlots(slots, 30, FrequencyWeekly, dr, 0,
		map[string]*ParticipantCalendar{"alice": {Name: "Alice"}})
	require.Empty(t, errs)
	require.Len(t, scores, 2)
	assert.Equal(t, slots[0], scores[0].Slot, "no implicit re-sorting by score")
	assert.Equal(t, slots[1], scores[1].Slot)
}

func TestScoreSlotsRecurringZonedConflict(t *testing.T) {
	// A Tuesday 09:00 America/New_York slot over eight sampled weeks,
	// with Alice busy in a weekly window derived from the real zoned
	// occurrences rather than a hardcoded UTC offset. Every week must
	// conflict, across the DST transition included in the range.
	slot := SlotDescriptor{Day: Tuesday, Time: "09:00", Timezone: "America/New_York"}
	dr := DateRange{Start: date(2025, time.February, 3), End: date(2025, time.April, 30)}

	occ, err := EnumerateOccurrences(slot, 60, FrequencyWeekly, dr, 8)
	require.NoError(t, err)
	require.Len(t, occ, 8)

	aliceBusy := make([]interval.Span, 0, len(occ))
	for _, o := range occ {
		aliceBusy = append(aliceBusy, interval.Span{
			Start: o.Span.Start.Add(15 * time.Minute),
			End:   o.Span.Start.Add(45 * time.Minute),
		})
	}
	calendars := map[string]*ParticipantCalendar{
		"alice": {Name: "Alice", Busy: aliceBusy},
		"bob":   {Name: "Bob"},
	}

	scores, errs := ScoreSlots([]SlotDescriptor{slot}, 60, FrequencyWeekly, dr, 8, calendars)
	require.Empty(t, errs)
	require.Len(t, scores, 1)

	s := scores[0]
	assert.Equal(t, 8, s.TotalConflicts, "one conflict per sampled week")
	assert.Equal(t, 8, s.PerPersonConflicts["alice"])
	assert.Zero(t, s.PerPersonConflicts["bob"])
	assert.Len(t, s.ConflictWeeks, 8)
	assert.InDelta(t, 50.0, s.PercentAvailable, 0.001, "(8*2-8)/(8*2)*100")
	assert.Equal(t, "Alice would miss most meetings", s.TradeoffSummary)
}
