package availability

import (
	"sort"

	"github.com/meetwhen/meetwhen/internal/interval"
)

// MergeOverrides applies manual overrides to a raw busy list using
// subtract-then-union: every override is subtracted from every raw busy
// event, then the non-free overrides are appended as first-class busy
// entries and the combined list is sorted by start. Free overrides only
// subtract; they are never added back as busy time.
//
// An override fully containing a busy event removes it. Overlapping
// overrides are subtracted sequentially, each pass operating on the output
// of the previous one. Overrides are never split by other overrides; they
// always survive intact. The result is ready for Normalize.
func MergeOverrides(busy []interval.Span, overrides []Override) []interval.Span {
	if len(overrides) == 0 {
		out := make([]interval.Span, len(busy))
		copy(out, busy)
		return out
	}

	surviving := make([]interval.Span, 0, len(busy))
	for _, event := range busy {
		pieces := []interval.Span{event}
		for _, ov := range overrides {
			var next []interval.Span
			for _, p := range pieces {
				next = append(next, interval.Subtract(p, ov.Span)...)
			}
			pieces = next
			if len(pieces) == 0 {
				break
			}
		}
		surviving = append(surviving, pieces...)
	}

	for _, ov := range overrides {
		if ov.Free {
			continue
		}
		surviving = append(surviving, ov.Span)
	}

	sort.Slice(surviving, func(i, j int) bool {
		return surviving[i].Start.Before(surviving[j].Start)
	})
	return surviving
}
