package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/templui/pushups/internal/model"
	"github.com/templui/pushups/internal/validation"
)

var (
	ErrDuplicateDate = errors.New("more than one record for the same date")
)

// AddPushup logs entry's sets. Sets for a date that already has a record
// are appended and the record's goal snapshot is kept. A new date gets a
// record whose goal is the current settings goal. Sets are ordered by
// their "HH:MM" time and duplicates are kept.
func (s *Store) AddPushup(entry model.PushupRecord) error {
	err := validation.ValidateEntry(entry)
	if err != nil {
		return err
	}

	s.mu.Lock()
	next := model.CloneRecords(s.pushups)

	_, index, found := lo.FindIndexOf(next, func(record model.PushupRecord) bool {
		return record.Date == entry.Date
	})
	if found {
		next[index].Sets = sortSets(append(next[index].Sets, entry.Sets...))
	} else {
		next = append(next, model.PushupRecord{
			Date:      entry.Date,
			Sets:      sortSets(slices.Clone(entry.Sets)),
			DailyGoal: s.settings.DailyGoal,
		})
	}

	err = s.commitPushups(next)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.listeners.publish(Event{Slice: SlicePushups, Action: ActionAddPushup})
	return nil
}

// UpdateSettings replaces the settings slice. Callers pass the complete
// object. A zero SchemaVersion keeps the stored one since migrations own it.
func (s *Store) UpdateSettings(settings model.UserSettings) error {
	err := validation.ValidateSettings(settings)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if settings.SchemaVersion == 0 {
		settings.SchemaVersion = s.settings.SchemaVersion
	}
	err = s.commitSettings(settings)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.listeners.publish(Event{Slice: SliceSettings, Action: ActionUpdateSettings})
	return nil
}

// SetTodayGoal changes the goal snapshot of today's record. It reports
// false when nothing was logged today.
func (s *Store) SetTodayGoal(goal int) (bool, error) {
	err := validation.ValidateGoal(goal)
	if err != nil {
		return false, err
	}
	today := s.Today()

	s.mu.Lock()
	_, index, found := lo.FindIndexOf(s.pushups, func(record model.PushupRecord) bool {
		return record.Date == today
	})
	if !found || s.pushups[index].DailyGoal == goal {
		s.mu.Unlock()
		return found, nil
	}

	next := model.CloneRecords(s.pushups)
	next[index].DailyGoal = goal
	err = s.commitPushups(next)
	s.mu.Unlock()
	if err != nil {
		return false, err
	}

	s.listeners.publish(Event{Slice: SlicePushups, Action: ActionSetTodayGoal})
	return true, nil
}

// ClearAllData resets both slices to their defaults
func (s *Store) ClearAllData() error {
	s.mu.Lock()
	err := s.commitPushups([]model.PushupRecord{})
	if err == nil {
		err = s.commitSettings(model.DefaultSettings())
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Info("all data cleared")
	s.listeners.publish(Event{Slice: SlicePushups, Action: ActionClearAllData})
	s.listeners.publish(Event{Slice: SliceSettings, Action: ActionClearAllData})
	return nil
}

// ReplacePushups swaps in a rewritten pushups slice. It is meant for data
// migrations and only enforces one record per date.
func (s *Store) ReplacePushups(records []model.PushupRecord) error {
	seen := make(map[string]bool, len(records))
	for _, record := range records {
		if seen[record.Date] {
			return fmt.Errorf("%w: %s", ErrDuplicateDate, record.Date)
		}
		seen[record.Date] = true
	}

	next := model.CloneRecords(records)

	s.mu.Lock()
	err := s.commitPushups(next)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.listeners.publish(Event{Slice: SlicePushups, Action: ActionMigrate})
	return nil
}

// SetSchemaVersion records the applied migration version
func (s *Store) SetSchemaVersion(version int) error {
	if version < 0 {
		return fmt.Errorf("%w: schema version must not be negative", validation.ErrMalformedInput)
	}

	s.mu.Lock()
	if s.settings.SchemaVersion == version {
		s.mu.Unlock()
		return nil
	}
	settings := s.settings
	settings.SchemaVersion = version
	err := s.commitSettings(settings)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.listeners.publish(Event{Slice: SliceSettings, Action: ActionMigrate})
	return nil
}

// commitPushups must be called with s.mu held
func (s *Store) commitPushups(records []model.PushupRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode pushups: %w", err)
	}
	s.pushups = records
	s.persister.enqueue(SlicePushups, data)
	return nil
}

// commitSettings must be called with s.mu held
func (s *Store) commitSettings(settings model.UserSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	s.settings = settings
	s.persister.enqueue(SliceSettings, data)
	return nil
}

// sortSets orders sets by time in place. Lexical order equals clock order
// for zero-padded "HH:MM". The sort is stable so equal times keep the
// order they were logged in.
func sortSets(sets []model.PushupSet) []model.PushupSet {
	slices.SortStableFunc(sets, func(a, b model.PushupSet) int {
		return strings.Compare(a.Time, b.Time)
	})
	return sets
}
