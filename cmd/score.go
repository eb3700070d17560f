package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/meetwhen/meetwhen/internal/recurring"
)

func newScoreCmd() *cobra.Command {
	var (
		calendarsFile string
		icsFiles      []string
		duration      int
		frequency     string
		from          string
		to            string
		weeks         int
	)

	cmd := &cobra.Command{
		Use:   "score SLOT [SLOT...]",
		Short: "Score candidate recurring meeting slots against calendars",
		Long: `Score candidate recurring meeting slots against participant calendars
over a sample period. Each slot is given as DAY@HH:MM@Zone, e.g.
TU@09:00@America/New_York.

Every candidate gets a conflict tally, per-person breakdown and a
trade-off summary. A malformed candidate is reported inline and does not
abort scoring of the others.`,
		Example: `  meetwhen score TU@09:00@America/New_York WE@14:00@Europe/Berlin \
    --calendars team.json --duration 60 --from 2025-01-06 --to 2025-03-30`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			freq, err := recurring.ParseFrequency(frequency)
			if err != nil {
				return err
			}

			startDate, err := time.Parse("2006-01-02", from)
			if err != nil {
				return fmt.Errorf("invalid --from (want YYYY-MM-DD): %w", err)
			}
			endDate, err := time.Parse("2006-01-02", to)
			if err != nil {
				return fmt.Errorf("invalid --to (want YYYY-MM-DD): %w", err)
			}

			participants, err := loadParticipants(calendarsFile, icsFiles)
			if err != nil {
				return err
			}
			calendars := toScoringCalendars(participants)

			type candidate struct {
				raw      string
				slot     recurring.SlotDescriptor
				parseErr error
			}
			candidates := make([]candidate, 0, len(args))
			var parseable []recurring.SlotDescriptor
			for _, raw := range args {
				slot, err := recurring.ParseSlotDescriptor(raw)
				if err != nil {
					candidates = append(candidates, candidate{raw: raw, parseErr: err})
					continue
				}
				candidates = append(candidates, candidate{raw: raw, slot: slot})
				parseable = append(parseable, slot)
			}

			dr := recurring.DateRange{Start: startDate, End: endDate}
			scores, slotErrs := recurring.ScoreSlots(parseable, duration, freq, dr, weeks, calendars)

			scoreBySlot := make(map[recurring.SlotDescriptor]recurring.SlotScore, len(scores))
			for _, s := range scores {
				scoreBySlot[s.Slot] = s
			}
			errBySlot := make(map[recurring.SlotDescriptor]error, len(slotErrs))
			for _, e := range slotErrs {
				errBySlot[e.Slot] = e.Err
			}

			out := cmd.OutOrStdout()
			for i, c := range candidates {
				if i > 0 {
					fmt.Fprintln(out)
				}
				if c.parseErr != nil {
					fmt.Fprintf(out, "%s\n  error: %v\n", c.raw, c.parseErr)
					continue
				}
				if err, ok := errBySlot[c.slot]; ok {
					fmt.Fprintf(out, "%s\n  error: %v\n", c.slot, err)
					continue
				}
				score, ok := scoreBySlot[c.slot]
				if !ok {
					fmt.Fprintf(out, "%s\n  error: no occurrences in range\n", c.slot)
					continue
				}
				printSlotScore(out, score)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&calendarsFile, "calendars", "", "JSON file mapping participant name to busy intervals")
	cmd.Flags().StringArrayVar(&icsFiles, "ics", nil, "iCalendar (.ics) file to import as one participant (repeatable)")
	cmd.Flags().IntVar(&duration, "duration", 30, "Meeting duration in minutes")
	cmd.Flags().StringVar(&frequency, "frequency", "WEEKLY", "Recurrence frequency: WEEKLY or BIWEEKLY")
	cmd.Flags().StringVar(&from, "from", "", "First calendar date of the scoring range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last calendar date of the scoring range (YYYY-MM-DD, inclusive)")
	cmd.Flags().IntVar(&weeks, "weeks", recurring.DefaultSampleWeeks, "Cap on the number of weeks to sample")

	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func printSlotScore(out io.Writer, score recurring.SlotScore) {
	fmt.Fprintf(out, "%s (%d min)\n", score.Slot, score.DurationMinutes)
	fmt.Fprintf(out, "  availability: %.0f%%  occurrences: %d  conflicts: %d\n",
		score.PercentAvailable, score.TotalOccurrences, score.TotalConflicts)

	if len(score.PerPersonConflicts) > 0 {
		ids := make([]string, 0, len(score.PerPersonConflicts))
		for id := range score.PerPersonConflicts {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		parts := make([]string, 0, len(ids))
		for _, id := range ids {
			parts = append(parts, fmt.Sprintf("%s: %d", id, score.PerPersonConflicts[id]))
		}
		fmt.Fprintf(out, "  conflicts by person: %s\n", strings.Join(parts, ", "))
	}

	if len(score.ConflictWeeks) > 0 {
		wks := make([]string, 0, len(score.ConflictWeeks))
		for _, w := range score.ConflictWeeks {
			wks = append(wks, w.Format("2006-01-02"))
		}
		fmt.Fprintf(out, "  weeks with conflicts: %s\n", strings.Join(wks, ", "))
	}

	fmt.Fprintf(out, "  %s\n", score.TradeoffSummary)
}
