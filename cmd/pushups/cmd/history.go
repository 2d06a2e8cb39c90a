package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/templui/pushups/internal/stats"
)

func (c *CLI) historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List logged days, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := c.app.Store
			out := cmd.OutOrStdout()

			history := stats.History(s.Pushups(), s.Settings().DailyGoal, c.app.Location)
			if len(history) == 0 {
				fmt.Fprintln(out, dim("Nothing logged yet."))
				return nil
			}
			if limit > 0 && len(history) > limit {
				history = history[:limit]
			}

			for _, entry := range history {
				c.printer.Fprintf(out, "%s  %s  (%d sets)\n",
					entry.Date, progress(c.printer, entry.Total, entry.Goal), len(entry.Sets))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n days")
	return cmd
}

func (c *CLI) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the current streak and this week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := c.app.Store
			out := cmd.OutOrStdout()
			records := s.Pushups()
			goal := s.Settings().DailyGoal
			now := s.Now()

			c.printer.Fprintf(out, "Streak: %d days\n", stats.Streak(records, goal, now))

			days := stats.Week(records, goal, now)
			letters := make([]string, len(days))
			marks := make([]string, len(days))
			for i, day := range days {
				letters[i] = day.Letter
				switch {
				case day.GoalMet:
					marks[i] = good("●")
				case day.IsToday:
					marks[i] = "○"
				default:
					marks[i] = dim("·")
				}
			}
			fmt.Fprintf(out, "Week:   %s\n        %s\n", strings.Join(letters, " "), strings.Join(marks, " "))

			best, ok := stats.BestDay(records)
			if ok {
				c.printer.Fprintf(out, "Best:   %d on %s\n", best.Total(), best.Date)
			}
			c.printer.Fprintf(out, "Total:  %d\n", s.TotalPushups())
			return nil
		},
	}
}
