package recurring

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/meetwhen/meetwhen/internal/interval"
)

// Frequency is the recurrence cadence of a candidate slot.
type Frequency string

const (
	FrequencyWeekly   Frequency = "WEEKLY"
	FrequencyBiweekly Frequency = "BIWEEKLY"
)

// ParseFrequency validates a cadence string. Unsupported values are a
// caller-visible error; nothing silently defaults to weekly.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(strings.ToUpper(strings.TrimSpace(s))) {
	case FrequencyWeekly:
		return FrequencyWeekly, nil
	case FrequencyBiweekly:
		return FrequencyBiweekly, nil
	default:
		return "", fmt.Errorf("unsupported frequency %q (want WEEKLY or BIWEEKLY)", s)
	}
}

// stepWeeks returns the recurrence interval in weeks.
func (f Frequency) stepWeeks() (int, error) {
	switch f {
	case FrequencyWeekly:
		return 1, nil
	case FrequencyBiweekly:
		return 2, nil
	default:
		return 0, fmt.Errorf("unsupported frequency %q (want WEEKLY or BIWEEKLY)", string(f))
	}
}

// Weekday is a two-letter day-of-week code (MO..SU).
type Weekday string

const (
	Monday    Weekday = "MO"
	Tuesday   Weekday = "TU"
	Wednesday Weekday = "WE"
	Thursday  Weekday = "TH"
	Friday    Weekday = "FR"
	Saturday  Weekday = "SA"
	Sunday    Weekday = "SU"
)

var weekdayByCode = map[Weekday]time.Weekday{
	Monday:    time.Monday,
	Tuesday:   time.Tuesday,
	Wednesday: time.Wednesday,
	Thursday:  time.Thursday,
	Friday:    time.Friday,
	Saturday:  time.Saturday,
	Sunday:    time.Sunday,
}

var rruleByCode = map[Weekday]rrule.Weekday{
	Monday:    rrule.MO,
	Tuesday:   rrule.TU,
	Wednesday: rrule.WE,
	Thursday:  rrule.TH,
	Friday:    rrule.FR,
	Saturday:  rrule.SA,
	Sunday:    rrule.SU,
}

// ParseWeekday validates a two-letter day code.
func ParseWeekday(s string) (Weekday, error) {
	w := Weekday(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := weekdayByCode[w]; !ok {
		return "", fmt.Errorf("unknown day of week %q (want MO..SU)", s)
	}
	return w, nil
}

// Time returns the standard library weekday.
func (w Weekday) Time() (time.Weekday, error) {
	wd, ok := weekdayByCode[w]
	if !ok {
		return 0, fmt.Errorf("unknown day of week %q (want MO..SU)", string(w))
	}
	return wd, nil
}

// SlotDescriptor is an immutable weekly pattern anchor for a candidate
// recurring slot. It carries no date, only a day of week, a local "HH:MM"
// clock time and an IANA zone.
type SlotDescriptor struct {
	Day      Weekday `json:"dayOfWeek"`
	Time     string  `json:"time"`
	Timezone string  `json:"timezone"`
}

// String renders the slot for logs and summaries, e.g. "TU 09:00 America/New_York".
func (s SlotDescriptor) String() string {
	return fmt.Sprintf("%s %s %s", s.Day, s.Time, s.Timezone)
}

// ParseSlotDescriptor parses the compact "DAY@HH:MM@Zone" form used by the
// CLI and MCP tools, e.g. "TU@09:00@America/New_York".
func ParseSlotDescriptor(s string) (SlotDescriptor, error) {
	parts := strings.Split(strings.TrimSpace(s), "@")
	if len(parts) != 3 {
		return SlotDescriptor{}, fmt.Errorf("invalid slot %q (want DAY@HH:MM@Zone)", s)
	}
	day, err := ParseWeekday(parts[0])
	if err != nil {
		return SlotDescriptor{}, err
	}
	slot := SlotDescriptor{Day: day, Time: parts[1], Timezone: parts[2]}
	if _, _, err := parseClockTime(slot.Time); err != nil {
		return SlotDescriptor{}, err
	}
	if _, err := time.LoadLocation(slot.Timezone); err != nil {
		return SlotDescriptor{}, fmt.Errorf("unknown timezone %q: %w", slot.Timezone, err)
	}
	return slot, nil
}

// DateRange is an inclusive calendar-date range. Only the year, month and
// day of the bounds are significant.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Occurrence is one concrete instance of a recurring slot within the
// sampled range. WeekKey is the ISO Monday-start date of the week the
// zoned start falls in, used to deduplicate "this week had a conflict"
// reporting.
type Occurrence struct {
	Span    interval.Span `json:"span"`
	WeekKey time.Time     `json:"weekKey"`
}

// ParticipantCalendar is one participant's busy data for scoring. A nil
// *ParticipantCalendar in the scoring map means the calendar is unknown,
// which is distinct from an empty-but-known one.
type ParticipantCalendar struct {
	Name string          `json:"name"`
	Busy []interval.Span `json:"busy"`
}

// SlotScore is the scoring result for one viable candidate slot.
// PerPersonConflicts is keyed by the stable participant identifier used in
// the scoring map; display names appear only in the trade-off summary.
type SlotScore struct {
	Slot                SlotDescriptor `json:"slot"`
	DurationMinutes     int            `json:"durationMinutes"`
	TotalOccurrences    int            `json:"totalOccurrences"`
	TotalConflicts      int            `json:"totalConflicts"`
	PerPersonConflicts  map[string]int `json:"perPersonConflicts"`
	PercentAvailable    float64        `json:"percentAvailable"`
	ConflictWeeks       []time.Time    `json:"conflictWeeks,omitempty"`
	TradeoffSummary     string         `json:"tradeoffSummary"`
	UnknownParticipants []string       `json:"unknownParticipants,omitempty"`
}

// SlotError reports a candidate that could not be scored. One bad candidate
// never aborts scoring of the others.
type SlotError struct {
	Slot SlotDescriptor
	Err  error
}

func (e SlotError) Error() string {
	return fmt.Sprintf("slot %s: %v", e.Slot, e.Err)
}

func (e SlotError) Unwrap() error {
	return e.Err
}
