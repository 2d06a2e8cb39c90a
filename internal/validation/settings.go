package validation

import (
	"github.com/templui/pushups/internal/model"
)

// ValidateSettings validates a complete settings object
func ValidateSettings(settings model.UserSettings) error {
	err := ValidateGoal(settings.DailyGoal)
	if err != nil {
		return err
	}

	err = ValidateClock(settings.ReminderTime)
	if err != nil {
		return err
	}

	if settings.SchemaVersion < 0 {
		return invalid("schema version must not be negative")
	}

	return nil
}
