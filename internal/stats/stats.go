// Package stats derives history, streak and week views from push-up records.
package stats

import (
	"cmp"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/templui/pushups/internal/model"
)

var dayLetters = [7]string{"S", "M", "T", "W", "T", "F", "S"}

// Entry is one day of logged history
type Entry struct {
	Date    string
	Total   int
	Goal    int
	GoalMet bool
	Sets    []model.PushupSet
}

// Day is one day of the current week
type Day struct {
	Date    time.Time
	Letter  string
	Total   int
	Goal    int
	GoalMet bool
	IsToday bool
}

// History returns records newest first. Records whose date cannot be
// parsed keep their relative order after the rest.
func History(records []model.PushupRecord, currentGoal int, loc *time.Location) []Entry {
	type dated struct {
		record model.PushupRecord
		at     time.Time
		ok     bool
	}

	if loc == nil {
		loc = time.Local
	}

	items := lo.Map(records, func(r model.PushupRecord, _ int) dated {
		at, err := model.ParseDate(r.Date, loc)
		return dated{record: r, at: at, ok: err == nil}
	})

	slices.SortStableFunc(items, func(a, b dated) int {
		switch {
		case a.ok && b.ok:
			return b.at.Compare(a.at)
		case a.ok:
			return -1
		case b.ok:
			return 1
		}
		return 0
	})

	return lo.Map(items, func(item dated, _ int) Entry {
		goal := goalFor(item.record, currentGoal)
		return Entry{
			Date:    item.record.Date,
			Total:   item.record.Total(),
			Goal:    goal,
			GoalMet: item.record.GoalMet(goal),
			Sets:    slices.Clone(item.record.Sets),
		}
	})
}

// Streak counts consecutive days up to today whose goal was met. Today
// only breaks the streak once it is over, so an unmet today is skipped.
// A record is measured against its own goal, or currentGoal when it has
// none. A day without a record ends the streak.
func Streak(records []model.PushupRecord, currentGoal int, today time.Time) int {
	byDate := lo.KeyBy(records, func(r model.PushupRecord) string { return r.Date })

	day := startOfDay(today)
	if !dayMet(byDate, day, currentGoal) {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for dayMet(byDate, day, currentGoal) {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// Week returns the seven days of today's week, starting on Sunday
func Week(records []model.PushupRecord, currentGoal int, today time.Time) []Day {
	byDate := lo.KeyBy(records, func(r model.PushupRecord) string { return r.Date })

	now := startOfDay(today)
	start := now.AddDate(0, 0, -int(now.Weekday()))

	return lo.Times(7, func(i int) Day {
		date := start.AddDate(0, 0, i)
		record := byDate[model.FormatDate(date)]
		goal := goalFor(record, currentGoal)

		return Day{
			Date:    date,
			Letter:  dayLetters[date.Weekday()],
			Total:   record.Total(),
			Goal:    goal,
			GoalMet: record.GoalMet(goal),
			IsToday: date.Equal(now),
		}
	})
}

// BestDay returns the record with the highest total, the earliest on ties
func BestDay(records []model.PushupRecord) (model.PushupRecord, bool) {
	if len(records) == 0 {
		return model.PushupRecord{}, false
	}
	best := slices.MinFunc(records, func(a, b model.PushupRecord) int {
		return cmp.Compare(b.Total(), a.Total())
	})
	return best, true
}

func dayMet(byDate map[string]model.PushupRecord, day time.Time, currentGoal int) bool {
	record, ok := byDate[model.FormatDate(day)]
	if !ok {
		return false
	}
	return record.GoalMet(goalFor(record, currentGoal))
}

// goalFor is the record's goal snapshot, or currentGoal when it has none
func goalFor(record model.PushupRecord, currentGoal int) int {
	if record.DailyGoal > 0 {
		return record.DailyGoal
	}
	return currentGoal
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
