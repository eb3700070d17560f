package availability

import (
	"time"

	"github.com/meetwhen/meetwhen/internal/interval"
)

// CalendarStatus indicates whether a participant's busy data could be
// resolved from a provider.
type CalendarStatus string

const (
	// StatusKnown means the busy list is authoritative: an empty list means
	// the participant is confirmed free.
	StatusKnown CalendarStatus = "known"

	// StatusUnknown means no calendar data could be resolved. The busy list
	// is meaningless and the participant must be reported, not assumed free.
	StatusUnknown CalendarStatus = "unknown"
)

// Participant is one person's calendar for a single scheduling request.
// ID is the stable identifier used for tallies and logs; Name is the
// display name used at the presentation boundary.
type Participant struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Busy   []interval.Span `json:"busy,omitempty"`
	Status CalendarStatus  `json:"status"`
}

// Override is a manually entered interval that takes precedence over
// provider data covering the same time range. Free marks a correction of
// the form "actually free then": the covered provider time is removed and
// nothing is added back. With Free unset the override is an authoritative
// busy entry.
type Override struct {
	Span    interval.Span `json:"span"`
	Summary string        `json:"summary"`
	Free    bool          `json:"free,omitempty"`
}

// FilterConfig is the acceptability policy for common free windows.
// A nil Acceptable predicate accepts everything; MinDuration of zero
// disables the duration check.
type FilterConfig struct {
	MinDuration time.Duration
	Acceptable  func(interval.Span) bool
}

// FreeWindows is the result of the one-off pipeline: the spans free for
// every participant with known calendar data, plus the names of
// participants whose availability could not be determined.
type FreeWindows struct {
	Windows []interval.Span `json:"windows"`
	Unknown []string        `json:"unknown,omitempty"`
}
