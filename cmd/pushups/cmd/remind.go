package cmd

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

func (c *CLI) remindCmd() *cobra.Command {
	var logOnly bool

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Run in the foreground and deliver the daily reminder",
		Long: `Keeps the daily reminder in sync with your settings until interrupted.
Reminders are emailed when RESEND_API_KEY and REMINDER_EMAIL are set and
printed here otherwise, or written to the log with --log.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var out io.Writer = cmd.OutOrStdout()
			if logOnly {
				out = nil
			}
			sender := c.app.ReminderSender(out)
			stop := c.app.StartReminders(ctx, sender)
			defer stop()

			settings := c.app.Store.Settings()
			if !settings.RemindersActive() {
				slog.Warn("reminders are off, waiting for settings to change",
					"send_reminder", settings.SendReminder,
					"onboarding_completed", settings.OnboardingCompleted)
			}

			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().BoolVar(&logOnly, "log", false, "log reminders instead of printing them")
	return cmd
}
