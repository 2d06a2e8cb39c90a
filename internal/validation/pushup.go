package validation

import (
	"errors"
	"fmt"
	"time"

	"github.com/templui/pushups/internal/model"
)

// ErrMalformedInput is wrapped by every validation failure so callers can
// tell rejected input apart from storage problems.
var ErrMalformedInput = errors.New("malformed input")

// MaxPushupsPerSet guards against fat-fingered counts
const MaxPushupsPerSet = 10000

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedInput, fmt.Sprintf(format, args...))
}

// ValidateDate checks a "DD/MM/YYYY" record date
func ValidateDate(date string) error {
	if date == "" {
		return invalid("date is required")
	}

	_, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return invalid("date %q must be formatted DD/MM/YYYY", date)
	}

	return nil
}

// ValidateClock checks a zero-padded 24h "HH:MM" time.
// Zero padding keeps lexical order equal to chronological order.
func ValidateClock(clock string) error {
	if len(clock) != len(model.ClockLayout) {
		return invalid("time %q must be formatted HH:MM", clock)
	}

	_, err := time.Parse(model.ClockLayout, clock)
	if err != nil {
		return invalid("time %q must be formatted HH:MM", clock)
	}

	return nil
}

func ValidateSet(set model.PushupSet) error {
	if set.Pushups < 0 {
		return invalid("pushups must not be negative (got %d)", set.Pushups)
	}

	if set.Pushups > MaxPushupsPerSet {
		return invalid("pushups must not exceed %d per set (got %d)", MaxPushupsPerSet, set.Pushups)
	}

	return ValidateClock(set.Time)
}

// ValidateEntry validates an entry passed to the add action.
// The entry's DailyGoal is informative only and not checked.
func ValidateEntry(entry model.PushupRecord) error {
	err := ValidateDate(entry.Date)
	if err != nil {
		return err
	}

	if len(entry.Sets) == 0 {
		return invalid("at least one set is required")
	}

	for i, set := range entry.Sets {
		err := ValidateSet(set)
		if err != nil {
			return fmt.Errorf("set %d: %w", i+1, err)
		}
	}

	return nil
}

// ValidateGoal checks a daily goal
func ValidateGoal(goal int) error {
	if goal <= 0 {
		return invalid("daily goal must be greater than zero (got %d)", goal)
	}
	return nil
}
