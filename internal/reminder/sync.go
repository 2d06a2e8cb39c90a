package reminder

import (
	"context"
	"log/slog"

	"github.com/templui/pushups/internal/model"
	"github.com/templui/pushups/internal/store"
)

// SettingsSource is the store surface Sync observes
type SettingsSource interface {
	Settings() model.UserSettings
	Subscribe(l store.Listener) (id string)
	Unsubscribe(id string)
}

// Sync keeps s in line with the reminder settings: a reminder is
// scheduled while reminders are on and onboarding is complete, and
// cancelled otherwise. It applies the current settings immediately and
// again after every settings change. The returned func stops syncing.
func Sync(ctx context.Context, src SettingsSource, s *Scheduler) func() {
	apply := func() {
		settings := src.Settings()
		if !settings.RemindersActive() {
			s.CancelReminders()
			return
		}

		clock, active := s.Scheduled()
		if active && clock == settings.ReminderTime {
			return
		}

		err := s.ScheduleReminder(ctx, settings.ReminderTime)
		if err != nil {
			slog.Warn("failed to schedule reminder", "time", settings.ReminderTime, "error", err)
		}
	}

	apply()
	id := src.Subscribe(func(e store.Event) {
		if e.Slice == store.SliceSettings {
			apply()
		}
	})

	return func() { src.Unsubscribe(id) }
}
