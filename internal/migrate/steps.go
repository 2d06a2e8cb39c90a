package migrate

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/templui/pushups/internal/model"
	"github.com/templui/pushups/internal/validation"
)

// DefaultSteps returns the data migrations shipped with the app.
// loc is the zone legacy timestamps are converted to.
func DefaultSteps(loc *time.Location) []Step {
	if loc == nil {
		loc = time.Local
	}

	return []Step{
		{
			Version: 1,
			Name:    "backfill record daily goal",
			Migrate: backfillDailyGoal,
		},
		{
			Version: 2,
			Name:    "canonical set times",
			Migrate: func(ctx context.Context, t Target) error {
				return canonicalizeSetTimes(t, loc)
			},
		},
	}
}

// backfillDailyGoal gives every record without a goal the current one.
// Records that share a date are merged first so the rewrite is accepted.
func backfillDailyGoal(ctx context.Context, t Target) error {
	records := t.Pushups()
	if len(records) == 0 {
		return nil
	}

	goal := t.Settings().DailyGoal
	records, changed := mergeDuplicateDates(records)

	for i := range records {
		if records[i].DailyGoal <= 0 {
			records[i].DailyGoal = goal
			changed = true
		}
	}

	if !changed {
		return nil
	}
	return t.ReplacePushups(records)
}

// canonicalizeSetTimes rewrites legacy ISO timestamps as local "HH:MM",
// merges records sharing a date and re-sorts sets.
func canonicalizeSetTimes(t Target, loc *time.Location) error {
	records := t.Pushups()
	if len(records) == 0 {
		return nil
	}

	records, changed := mergeDuplicateDates(records)

	for i := range records {
		for j, set := range records[i].Sets {
			clock, ok := canonicalClock(set.Time, loc)
			if !ok {
				slog.Warn("unrecognized set time left unchanged",
					"date", records[i].Date, "time", set.Time)
				continue
			}
			if clock != set.Time {
				records[i].Sets[j].Time = clock
				changed = true
			}
		}

		if !slices.IsSortedFunc(records[i].Sets, compareSets) {
			slices.SortStableFunc(records[i].Sets, compareSets)
			changed = true
		}
	}

	if !changed {
		return nil
	}
	return t.ReplacePushups(records)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func canonicalClock(value string, loc *time.Location) (string, bool) {
	if validation.ValidateClock(value) == nil {
		return value, true
	}

	// Unpadded "9:05"
	clock, err := time.Parse(model.ClockLayout, value)
	if err == nil {
		return model.FormatClock(clock), true
	}

	for _, layout := range timestampLayouts {
		ts, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return model.FormatClock(ts.In(loc)), true
		}
	}
	return value, false
}

// mergeDuplicateDates folds records sharing a date into the first one.
// The first non-zero goal is kept.
func mergeDuplicateDates(records []model.PushupRecord) ([]model.PushupRecord, bool) {
	index := make(map[string]int, len(records))
	merged := make([]model.PushupRecord, 0, len(records))
	changed := false

	for _, record := range records {
		i, ok := index[record.Date]
		if !ok {
			index[record.Date] = len(merged)
			merged = append(merged, record)
			continue
		}

		changed = true
		merged[i].Sets = append(merged[i].Sets, record.Sets...)
		slices.SortStableFunc(merged[i].Sets, compareSets)
		if merged[i].DailyGoal <= 0 {
			merged[i].DailyGoal = record.DailyGoal
		}
	}

	return merged, changed
}

func compareSets(a, b model.PushupSet) int {
	return strings.Compare(a.Time, b.Time)
}
