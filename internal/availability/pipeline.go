package availability

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/meetwhen/meetwhen/internal/interval"
	"github.com/meetwhen/meetwhen/internal/logging"
)

// FilterAcceptable discards free spans that are policy-unacceptable:
// shorter than the configured minimum duration, or rejected by the
// optional acceptable-hours predicate.
func FilterAcceptable(spans []interval.Span, cfg FilterConfig) []interval.Span {
	var out []interval.Span
	for _, s := range spans {
		if cfg.MinDuration > 0 && s.Duration() < cfg.MinDuration {
			continue
		}
		if cfg.Acceptable != nil && !cfg.Acceptable(s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// FindCommonFreeTime computes the acceptable spans free for every
// participant with known calendar data inside the bounding window:
// normalize each busy list, invert it against the window, intersect the
// free lists across participants, then apply the acceptability filter.
//
// Participants with StatusUnknown are excluded from the intersection and
// reported under Unknown so the caller can distinguish "no data" from
// "confirmed free". With zero participants (or zero known participants)
// the whole window is returned as one free span: nothing constrains it,
// and resolving nobody is the caller's error to detect.
func FindCommonFreeTime(participants []Participant, window interval.Span, cfg FilterConfig) (FreeWindows, error) {
	if !window.IsValid() {
		return FreeWindows{}, fmt.Errorf("invalid window %s", window)
	}

	var result FreeWindows
	freeLists := make([][]interval.Span, 0, len(participants))
	for _, p := range participants {
		if p.Status == StatusUnknown {
			result.Unknown = append(result.Unknown, p.Name)
			continue
		}
		busy, dropped := interval.Normalize(p.Busy)
		if dropped > 0 {
			slog.Warn("dropped invalid busy intervals",
				logging.Operation("find_common_free_time"),
				logging.ParticipantHash(p.ID),
				slog.Int("dropped", dropped))
		}
		freeLists = append(freeLists, interval.Invert(busy, window))
	}
	sort.Strings(result.Unknown)

	if len(freeLists) == 0 {
		result.Windows = FilterAcceptable([]interval.Span{window}, cfg)
		return result, nil
	}

	common := interval.IntersectAll(freeLists)
	result.Windows = FilterAcceptable(common, cfg)
	return result, nil
}
