package recurring

import (
	"fmt"
	"sort"
	"strings"
)

// The dominant-blocker tie-break: a single participant is named only when
// their conflict rate clearly exceeds everyone else's. Noisy near-ties list
// the whole group instead of unfairly blaming one person.
const (
	dominantGap     = 0.12
	dominantMinRate = 0.12
)

// severityPhrase maps a group conflict rate (totalConflicts over
// totalOccurrences) onto a fixed phrase ladder.
func severityPhrase(rate float64) string {
	switch {
	case rate <= 0.05:
		return "works great for everyone"
	case rate <= 0.10:
		return "everyone can make almost every meeting"
	case rate <= 0.20:
		return "expect occasional misses spread across the team"
	case rate <= 0.30:
		return "about one in four meetings would have someone missing"
	case rate <= 0.50:
		return "roughly a third of meetings would be tough for someone"
	default:
		return "this slot rarely works for the group"
	}
}

// individualPhrase maps one participant's conflict rate onto the same
// threshold ladder, phrased for a single person.
func individualPhrase(name string, rate float64) string {
	switch {
	case rate <= 0.05:
		return fmt.Sprintf("%s would make almost every meeting", name)
	case rate <= 0.10:
		return fmt.Sprintf("%s would miss only the occasional meeting", name)
	case rate <= 0.20:
		return fmt.Sprintf("%s would miss about one in five meetings", name)
	case rate <= 0.30:
		return fmt.Sprintf("%s would miss roughly one in four meetings", name)
	case rate <= 0.50:
		return fmt.Sprintf("%s would miss roughly a third of meetings", name)
	default:
		return fmt.Sprintf("%s would miss most meetings", name)
	}
}

// isDominantBlocker reports whether the participant with the highest
// conflict rate should be named alone in the summary.
func isDominantBlocker(topRate, secondRate float64) bool {
	return topRate-secondRate >= dominantGap && topRate >= dominantMinRate
}

// conflictRank orders participants for summary rendering: most conflicts
// first, name as the deterministic tie-break.
type conflictRank struct {
	name      string
	conflicts int
	rate      float64
}

// renderTradeoffSummary builds the deterministic natural-language summary
// for one scored slot. knownNames are display names of participants with
// known calendars; unknownNames of those without data. perPerson is keyed
// by display name here; the caller resolves IDs to names first.
func renderTradeoffSummary(knownNames, unknownNames []string, perPerson map[string]int, totalConflicts, totalOccurrences int) string {
	if len(knownNames) == 0 {
		if len(unknownNames) == 0 {
			return "no participant calendars provided"
		}
		return fmt.Sprintf("need availability from %s before this can be scored",
			strings.Join(unknownNames, ", "))
	}

	if totalConflicts == 0 {
		s := "works great for everyone"
		if len(unknownNames) > 0 {
			s += fmt.Sprintf("; waiting on availability from %s", strings.Join(unknownNames, ", "))
		}
		return s
	}

	rate := float64(totalConflicts) / float64(totalOccurrences)

	ranks := make([]conflictRank, 0, len(knownNames))
	for _, name := range knownNames {
		ranks = append(ranks, conflictRank{
			name:      name,
			conflicts: perPerson[name],
			rate:      float64(perPerson[name]) / float64(totalOccurrences),
		})
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].conflicts != ranks[j].conflicts {
			return ranks[i].conflicts > ranks[j].conflicts
		}
		return ranks[i].name < ranks[j].name
	})

	topRate := ranks[0].rate
	secondRate := 0.0
	if len(ranks) > 1 {
		secondRate = ranks[1].rate
	}

	var s string
	if isDominantBlocker(topRate, secondRate) {
		s = individualPhrase(ranks[0].name, topRate)
	} else {
		var withConflicts []string
		for _, r := range ranks {
			if r.conflicts > 0 {
				withConflicts = append(withConflicts, r.name)
			}
		}
		s = severityPhrase(rate)
		if len(withConflicts) > 0 {
			s += fmt.Sprintf("; conflicts are spread across %s", strings.Join(withConflicts, ", "))
		}
	}

	if len(unknownNames) > 0 {
		s += fmt.Sprintf("; still need input from %s", strings.Join(unknownNames, ", "))
	}
	return s
}
