package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/templui/pushups/internal/model"
	"github.com/templui/pushups/internal/telemetry"
)

func (c *CLI) addCmd() *cobra.Command {
	var clock, date string

	cmd := &cobra.Command{
		Use:   "add <count>",
		Short: "Log a set of push-ups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("count must be a number: %q", args[0])
			}

			s := c.app.Store
			if clock == "" {
				clock = model.FormatClock(s.Now())
			}
			if date == "" {
				date = s.Today()
			}

			entry := model.PushupRecord{
				Date: date,
				Sets: []model.PushupSet{{Pushups: count, Time: clock}},
			}
			err = s.AddPushup(entry)
			if err != nil {
				return err
			}

			c.app.Telemetry.Track(telemetry.PushupLogged, telemetry.PushupLoggedProperties(count, len(entry.Sets)))

			record, _ := s.PushupsOn(date)
			c.printer.Fprintf(cmd.OutOrStdout(), "Logged %d push-ups at %s. %s: %s\n",
				count, clock, dayLabel(date, s.Today()), progress(c.printer, record.Total(), record.DailyGoal))

			return c.flush(cmd)
		},
	}

	cmd.Flags().StringVar(&clock, "time", "", "time of the set as HH:MM (default now)")
	cmd.Flags().StringVar(&date, "date", "", "date as DD/MM/YYYY (default today)")
	return cmd
}

func (c *CLI) todayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's push-ups against the goal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := c.app.Store
			out := cmd.OutOrStdout()

			c.printer.Fprintf(out, "Today: %s\n", progress(c.printer, s.TodayPushups(), s.TodayGoal()))

			record, ok := s.PushupsOn(s.Today())
			if !ok {
				fmt.Fprintln(out, dim("No sets logged yet."))
				return nil
			}
			for _, set := range record.Sets {
				c.printer.Fprintf(out, "  %s  %d\n", set.Time, set.Pushups)
			}
			return nil
		},
	}
}

func (c *CLI) totalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "total",
		Short: "Show lifetime push-ups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.printer.Fprintf(cmd.OutOrStdout(), "%d\n", c.app.Store.TotalPushups())
			return nil
		},
	}
}

func dayLabel(date, today string) string {
	if date == today {
		return "Today"
	}
	return date
}
