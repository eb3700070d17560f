package interval

import "sort"

// Normalize merges an unordered list of busy spans into a sorted,
// non-overlapping list. Adjacent spans are merged along with overlapping
// ones; a gap of zero minutes has no scheduling value. Spans with
// Start >= End are invalid input and are dropped; the number of dropped
// spans is returned so callers can surface a data-quality diagnostic.
//
// Normalizing an already-normalized list returns an equal list.
func Normalize(spans []Span) ([]Span, int) {
	valid := make([]Span, 0, len(spans))
	dropped := 0
	for _, s := range spans {
		if !s.IsValid() {
			dropped++
			continue
		}
		valid = append(valid, s)
	}
	if len(valid) == 0 {
		return nil, dropped
	}

	sort.Slice(valid, func(i, j int) bool {
		return valid[i].Start.Before(valid[j].Start)
	})

	merged := make([]Span, 0, len(valid))
	run := valid[0]
	for _, s := range valid[1:] {
		if !s.Start.After(run.End) {
			if s.End.After(run.End) {
				run.End = s.End
			}
			continue
		}
		merged = append(merged, run)
		run = s
	}
	merged = append(merged, run)
	return merged, dropped
}

// Invert subtracts a normalized busy list from a bounding window, producing
// the free spans within the window. Busy time outside the window is ignored.
// An empty busy list yields the whole window; a fully booked window yields
// an empty result.
func Invert(busy []Span, window Span) []Span {
	if !window.IsValid() {
		return nil
	}

	var free []Span
	cursor := window.Start
	for _, b := range busy {
		if b.Start.After(cursor) {
			gap := Span{Start: cursor, End: b.Start}
			if clipped, ok := gap.Clip(window); ok {
				free = append(free, clipped)
			}
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(window.End) {
		gap := Span{Start: cursor, End: window.End}
		if clipped, ok := gap.Clip(window); ok {
			free = append(free, clipped)
		}
	}
	return free
}

// Intersect computes the spans common to two sorted, non-overlapping lists
// using a two-pointer merge. The result is sorted and non-overlapping and
// has at most len(a)+len(b)-1 entries. Intersect(a, b) == Intersect(b, a).
func Intersect(a, b []Span) []Span {
	var out []Span
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := a[i].Start
		if b[j].Start.After(start) {
			start = b[j].Start
		}
		end := a[i].End
		if b[j].End.Before(end) {
			end = b[j].End
		}
		if start.Before(end) {
			out = append(out, Span{Start: start, End: end})
		}
		if a[i].End.Before(b[j].End) {
			i++
		} else {
			j++
		}
	}
	return out
}

// IntersectAll reduces N sorted free-span lists left to right. The reduction
// short-circuits as soon as an intermediate result is empty, since
// intersecting with nothing yields nothing. IntersectAll of zero lists is
// nil; of one list, that list.
func IntersectAll(lists [][]Span) []Span {
	if len(lists) == 0 {
		return nil
	}
	result := lists[0]
	for _, l := range lists[1:] {
		if len(result) == 0 {
			return nil
		}
		result = Intersect(result, l)
	}
	return result
}

// Subtract removes cut from s, returning the zero, one or two surviving
// sub-spans: the portion strictly before cut.Start and the portion strictly
// after cut.End.
func Subtract(s, cut Span) []Span {
	if !s.Overlaps(cut) {
		return []Span{s}
	}
	var out []Span
	if s.Start.Before(cut.Start) {
		out = append(out, Span{Start: s.Start, End: cut.Start})
	}
	if cut.End.Before(s.End) {
		out = append(out, Span{Start: cut.End, End: s.End})
	}
	return out
}
