package store

import (
	"github.com/samber/lo"

	"github.com/templui/pushups/internal/model"
)

// TotalPushups sums every set of every record
func (s *Store) TotalPushups() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.SumBy(s.pushups, func(record model.PushupRecord) int {
		return record.Total()
	})
}

// TodayPushups sums the sets of today's record, 0 when there is none
func (s *Store) TodayPushups() int {
	today := s.Today()

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := lo.Find(s.pushups, func(record model.PushupRecord) bool {
		return record.Date == today
	})
	if !ok {
		return 0
	}
	return record.Total()
}

// PushupsOn returns a copy of the record for date
func (s *Store) PushupsOn(date string) (model.PushupRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := lo.Find(s.pushups, func(record model.PushupRecord) bool {
		return record.Date == date
	})
	if !ok {
		return model.PushupRecord{}, false
	}
	return record.Clone(), true
}

// TodayGoal is the goal that applies to today: the snapshot on today's
// record, or the current setting when nothing was logged yet.
func (s *Store) TodayGoal() int {
	today := s.Today()

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := lo.Find(s.pushups, func(record model.PushupRecord) bool {
		return record.Date == today
	})
	if ok && record.DailyGoal > 0 {
		return record.DailyGoal
	}
	return s.settings.DailyGoal
}
