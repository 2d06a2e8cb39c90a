package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/templui/pushups/internal/model"
)

func (c *CLI) settingsCmd() *cobra.Command {
	var (
		goal         int
		sendReminder bool
		reminderTime string
		applyToday   bool
	)

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := c.app.Store
			settings := s.Settings()
			flags := cmd.Flags()

			if flags.Changed("goal") {
				settings.DailyGoal = goal
			}
			if flags.Changed("reminder") {
				settings.SendReminder = sendReminder
			}
			if flags.Changed("reminder-time") {
				settings.ReminderTime = reminderTime
			}

			if flags.NFlag() > 0 {
				err := s.UpdateSettings(settings)
				if err != nil {
					return err
				}

				if applyToday {
					updated, err := s.SetTodayGoal(settings.DailyGoal)
					if err != nil {
						return err
					}
					if !updated {
						fmt.Fprintln(cmd.OutOrStdout(), dim("Nothing logged today, new goal applies from the next record."))
					}
				}

				err = c.flush(cmd)
				if err != nil {
					return err
				}
			}

			c.printSettings(cmd, s.Settings())
			return nil
		},
	}

	cmd.Flags().IntVar(&goal, "goal", 0, "daily goal")
	cmd.Flags().BoolVar(&sendReminder, "reminder", false, "send a daily reminder")
	cmd.Flags().StringVar(&reminderTime, "reminder-time", "", "reminder time as HH:MM")
	cmd.Flags().BoolVar(&applyToday, "apply-today", false, "also change the goal of today's record")
	return cmd
}

func (c *CLI) onboardCmd() *cobra.Command {
	var (
		goal         int
		sendReminder bool
		reminderTime string
	)

	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Set up your daily goal and reminder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := c.app.Store
			settings := s.Settings()
			settings.DailyGoal = goal
			settings.SendReminder = sendReminder
			settings.ReminderTime = reminderTime
			settings.OnboardingCompleted = true

			err := s.UpdateSettings(settings)
			if err != nil {
				return err
			}
			err = c.flush(cmd)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), good("You're all set."))
			c.printSettings(cmd, s.Settings())
			return nil
		},
	}

	cmd.Flags().IntVar(&goal, "goal", model.DefaultDailyGoal, "daily goal")
	cmd.Flags().BoolVar(&sendReminder, "reminder", true, "send a daily reminder")
	cmd.Flags().StringVar(&reminderTime, "reminder-time", model.DefaultReminderTime, "reminder time as HH:MM")
	return cmd
}

func (c *CLI) clearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all push-ups and reset settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errNeedsConfirmation
			}

			err := c.app.Store.ClearAllData()
			if err != nil {
				return err
			}
			err = c.flush(cmd)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "All data cleared.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm")
	return cmd
}

func (c *CLI) printSettings(cmd *cobra.Command, settings model.UserSettings) {
	out := cmd.OutOrStdout()
	reminder := "off"
	if settings.SendReminder {
		reminder = "at " + settings.ReminderTime
	}

	c.printer.Fprintf(out, "Daily goal: %d\n", settings.DailyGoal)
	fmt.Fprintf(out, "Reminder:   %s\n", reminder)
	if !settings.OnboardingCompleted {
		fmt.Fprintln(out, dim("Run `pushups onboard` to finish setup."))
	}
}
