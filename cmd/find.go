package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/meetwhen/meetwhen/internal/availability"
	"github.com/meetwhen/meetwhen/internal/interval"
)

func newFindCmd() *cobra.Command {
	var (
		calendarsFile string
		icsFiles      []string
		overridesFile string
		from          string
		to            string
		minDuration   int
		hours         string
		timezone      string
	)

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find common free windows across participant calendars",
		Long: `Compute the time windows where every participant is free.

Participant calendars are read from a JSON file mapping participant name to
a list of busy intervals (RFC3339 start/end), and/or from .ics files. A
JSON null value marks a participant whose calendar is unknown; such
participants are reported but never assumed free.

Manual overrides (a JSON file mapping participant name to override entries)
take precedence over the calendar data: busy overrides add blocked time,
free overrides carve calendar busy time out.`,
		Example: `  meetwhen find --calendars team.json --from 2025-01-06T09:00:00Z --to 2025-01-06T17:00:00Z
  meetwhen find --ics alice.ics --ics bob.ics --from ... --to ... --min-duration 30
  meetwhen find --calendars team.json --from ... --to ... --hours 09:00-17:00 --timezone Europe/Berlin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := parseWindow(from, to)
			if err != nil {
				return err
			}

			participants, err := loadParticipants(calendarsFile, icsFiles)
			if err != nil {
				return err
			}

			if overridesFile != "" {
				overrides, err := loadOverrides(overridesFile)
				if err != nil {
					return err
				}
				applyOverrides(participants, overrides)
			}

			cfg := availability.FilterConfig{}
			if minDuration > 0 {
				cfg.MinDuration = time.Duration(minDuration) * time.Minute
			}
			if hours != "" {
				cfg.Acceptable, err = hoursPredicate(hours, timezone)
				if err != nil {
					return err
				}
			}

			free, err := availability.FindCommonFreeTime(participants, window, cfg)
			if err != nil {
				return err
			}

			printFreeWindows(cmd, free, len(participants))
			return nil
		},
	}

	cmd.Flags().StringVar(&calendarsFile, "calendars", "", "JSON file mapping participant name to busy intervals")
	cmd.Flags().StringArrayVar(&icsFiles, "ics", nil, "iCalendar (.ics) file to import as one participant (repeatable)")
	cmd.Flags().StringVar(&overridesFile, "overrides", "", "JSON file mapping participant name to manual override entries")
	cmd.Flags().StringVar(&from, "from", "", "Start of the search window (RFC3339)")
	cmd.Flags().StringVar(&to, "to", "", "End of the search window (RFC3339)")
	cmd.Flags().IntVar(&minDuration, "min-duration", 0, "Discard free windows shorter than this many minutes")
	cmd.Flags().StringVar(&hours, "hours", "", "Acceptable clock-time range, e.g. 09:00-17:00. Windows extending outside it are discarded.")
	cmd.Flags().StringVar(&timezone, "timezone", "UTC", "IANA timezone the --hours range is evaluated in")

	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func parseWindow(from, to string) (interval.Span, error) {
	start, err := time.Parse(time.RFC3339, from)
	if err != nil {
		return interval.Span{}, fmt.Errorf("invalid --from: %w", err)
	}
	end, err := time.Parse(time.RFC3339, to)
	if err != nil {
		return interval.Span{}, fmt.Errorf("invalid --to: %w", err)
	}
	return interval.NewSpan(start, end)
}

// hoursPredicate builds an acceptability predicate from a clock-time range
// like "09:00-17:00" evaluated in the given zone. The end bound may be
// "24:00", meaning midnight at the close of the day. A free window is
// acceptable only when it lies entirely inside the range on a single day.
func hoursPredicate(hours, timezone string) (func(interval.Span) bool, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", timezone, err)
	}

	lo, hi, ok := strings.Cut(hours, "-")
	if !ok {
		return nil, fmt.Errorf("invalid --hours %q (want HH:MM-HH:MM)", hours)
	}
	startMin, err := clockMinutes(lo)
	if err != nil {
		return nil, fmt.Errorf("invalid --hours %q: %w", hours, err)
	}
	var endMin int
	if strings.TrimSpace(hi) == "24:00" {
		endMin = 24 * 60
	} else {
		endMin, err = clockMinutes(hi)
		if err != nil {
			return nil, fmt.Errorf("invalid --hours %q: %w", hours, err)
		}
	}
	if startMin >= endMin {
		return nil, fmt.Errorf("invalid --hours %q: start must be before end", hours)
	}

	return func(s interval.Span) bool {
		start := s.Start.In(loc)
		end := s.End.In(loc)
		endOfDay := minutesOfDay(end)
		if start.YearDay() != end.YearDay() || start.Year() != end.Year() {
			// An end exactly at midnight still belongs to the starting day.
			nextMidnight := time.Date(start.Year(), start.Month(), start.Day()+1, 0, 0, 0, 0, loc)
			if !end.Equal(nextMidnight) {
				return false
			}
			endOfDay = 24 * 60
		}
		return minutesOfDay(start) >= startMin && endOfDay <= endMin
	}, nil
}

func clockMinutes(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q (want HH:MM)", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func minutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func printFreeWindows(cmd *cobra.Command, free availability.FreeWindows, participantCount int) {
	out := cmd.OutOrStdout()

	if len(free.Windows) == 0 {
		fmt.Fprintln(out, "No common free windows found.")
	} else {
		fmt.Fprintf(out, "Found %d common free window(s) across %d participant(s):\n", len(free.Windows), participantCount)
		for _, w := range free.Windows {
			fmt.Fprintf(out, "  %s to %s (%s)\n",
				w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339), w.Duration())
		}
	}

	if len(free.Unknown) > 0 {
		fmt.Fprintf(out, "\nNo calendar data for: %s. Their availability is not reflected above.\n",
			strings.Join(free.Unknown, ", "))
	}
}
