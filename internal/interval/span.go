package interval

import (
	"fmt"
	"time"
)

// Span is a half-open time interval [Start, End). A Span is valid only when
// Start is strictly before End.
type Span struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewSpan returns a Span covering [start, end) or an error if the bounds are
// inverted or zero-length.
func NewSpan(start, end time.Time) (Span, error) {
	s := Span{Start: start, End: end}
	if !s.IsValid() {
		return Span{}, fmt.Errorf("invalid span: start %s is not before end %s",
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return s, nil
}

// IsValid reports whether the span has positive duration.
func (s Span) IsValid() bool {
	return s.Start.Before(s.End)
}

// Duration returns the length of the span.
func (s Span) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Overlaps reports whether two half-open spans share any instant.
// Touching spans ([a,b) and [b,c)) do not overlap.
func (s Span) Overlaps(o Span) bool {
	return s.Start.Before(o.End) && o.Start.Before(s.End)
}

// Contains reports whether t falls inside the span.
func (s Span) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}

// Clip returns the portion of s that lies inside bounds. The second return
// value is false when nothing remains.
func (s Span) Clip(bounds Span) (Span, bool) {
	start := s.Start
	if start.Before(bounds.Start) {
		start = bounds.Start
	}
	end := s.End
	if end.After(bounds.End) {
		end = bounds.End
	}
	if !start.Before(end) {
		return Span{}, false
	}
	return Span{Start: start, End: end}, true
}

// String renders the span in RFC3339 for logs and error messages.
func (s Span) String() string {
	return fmt.Sprintf("[%s, %s)", s.Start.Format(time.RFC3339), s.End.Format(time.RFC3339))
}
