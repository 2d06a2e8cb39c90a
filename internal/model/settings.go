package model

const (
	DefaultDailyGoal    = 30
	DefaultReminderTime = "12:00"
)

// UserSettings is the singleton settings slice.
// SchemaVersion records which data migrations have been applied.
type UserSettings struct {
	DailyGoal           int    `json:"dailyGoal"`
	SendReminder        bool   `json:"sendReminder"`
	ReminderTime        string `json:"reminderTime"`
	OnboardingCompleted bool   `json:"onboardingCompleted"`
	SchemaVersion       int    `json:"schemaVersion"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() UserSettings {
	return UserSettings{
		DailyGoal:           DefaultDailyGoal,
		SendReminder:        true,
		ReminderTime:        DefaultReminderTime,
		OnboardingCompleted: false,
		SchemaVersion:       0,
	}
}

// RemindersActive reports whether a daily reminder should be scheduled
func (s UserSettings) RemindersActive() bool {
	return s.SendReminder && s.OnboardingCompleted
}
