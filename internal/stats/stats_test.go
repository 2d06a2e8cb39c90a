package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/pushups/internal/model"
)

// Monday
var today = time.Date(2023, 5, 1, 18, 0, 0, 0, time.UTC)

func record(date string, goal int, counts ...int) model.PushupRecord {
	r := model.PushupRecord{Date: date, DailyGoal: goal, Sets: []model.PushupSet{}}
	for _, n := range counts {
		r.Sets = append(r.Sets, model.PushupSet{Pushups: n, Time: "10:00"})
	}
	return r
}

func TestStreak(t *testing.T) {
	tests := []struct {
		name    string
		records []model.PushupRecord
		want    int
	}{
		{
			name: "no records",
			want: 0,
		},
		{
			name: "today met extends the run",
			records: []model.PushupRecord{
				record("29/04/2023", 30, 30),
				record("30/04/2023", 30, 40),
				record("01/05/2023", 30, 30),
			},
			want: 3,
		},
		{
			name: "today not met yet is skipped",
			records: []model.PushupRecord{
				record("29/04/2023", 30, 30),
				record("30/04/2023", 30, 40),
				record("01/05/2023", 30, 10),
			},
			want: 2,
		},
		{
			name: "a missed day ends the run",
			records: []model.PushupRecord{
				record("28/04/2023", 30, 30),
				record("30/04/2023", 30, 30),
			},
			want: 1,
		},
		{
			name: "record goal snapshot wins over current goal",
			records: []model.PushupRecord{
				record("30/04/2023", 10, 10),
			},
			want: 1,
		},
		{
			name: "legacy record without goal uses current goal",
			records: []model.PushupRecord{
				record("30/04/2023", 0, 20),
			},
			want: 0,
		},
		{
			name: "legacy record meeting current goal counts",
			records: []model.PushupRecord{
				record("29/04/2023", 0, 30),
				record("30/04/2023", 10, 10),
			},
			want: 2,
		},
		{
			name: "zero pushups never meets a goal",
			records: []model.PushupRecord{
				record("30/04/2023", 30),
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Streak(tt.records, 30, today))
		})
	}
}

func TestWeek(t *testing.T) {
	records := []model.PushupRecord{
		record("30/04/2023", 30, 30),
		record("01/05/2023", 50, 20, 10),
		record("06/05/2023", 0, 40),
	}

	week := Week(records, 30, today)
	require.Len(t, week, 7)

	assert.Equal(t, time.Date(2023, 4, 30, 0, 0, 0, 0, time.UTC), week[0].Date)
	assert.Equal(t, "S", week[0].Letter)
	assert.True(t, week[0].GoalMet)
	assert.False(t, week[0].IsToday)

	assert.Equal(t, "M", week[1].Letter)
	assert.True(t, week[1].IsToday)
	assert.Equal(t, 30, week[1].Total)
	assert.Equal(t, 50, week[1].Goal)
	assert.False(t, week[1].GoalMet)

	assert.Equal(t, 0, week[2].Total)
	assert.Equal(t, 30, week[2].Goal)
	assert.False(t, week[2].GoalMet)

	assert.Equal(t, time.Date(2023, 5, 6, 0, 0, 0, 0, time.UTC), week[6].Date)
	assert.True(t, week[6].GoalMet)
}

func TestWeek_StartsOnSunday(t *testing.T) {
	sunday := time.Date(2023, 4, 30, 9, 0, 0, 0, time.UTC)
	week := Week(nil, 30, sunday)

	assert.True(t, week[0].IsToday)
	assert.Equal(t, time.Date(2023, 5, 6, 0, 0, 0, 0, time.UTC), week[6].Date)
}

func TestHistory_NewestFirst(t *testing.T) {
	records := []model.PushupRecord{
		record("30/12/2022", 30, 5),
		record("someday", 30, 1),
		record("02/01/2023", 0, 40),
		record("31/12/2022", 20, 20),
	}

	history := History(records, 35, time.UTC)

	dates := make([]string, len(history))
	for i, e := range history {
		dates[i] = e.Date
	}
	assert.Equal(t, []string{"02/01/2023", "31/12/2022", "30/12/2022", "someday"}, dates)

	assert.Equal(t, 40, history[0].Total)
	assert.Equal(t, 35, history[0].Goal)
	assert.True(t, history[0].GoalMet)
	assert.True(t, history[1].GoalMet)
	assert.False(t, history[2].GoalMet)
}

func TestHistory_CopiesSets(t *testing.T) {
	records := []model.PushupRecord{record("01/05/2023", 30, 10)}

	history := History(records, 30, nil)
	history[0].Sets[0].Pushups = 99

	assert.Equal(t, 10, records[0].Sets[0].Pushups)
}

func TestBestDay(t *testing.T) {
	_, ok := BestDay(nil)
	assert.False(t, ok)

	best, ok := BestDay([]model.PushupRecord{
		record("29/04/2023", 30, 10),
		record("30/04/2023", 30, 20, 20),
		record("01/05/2023", 30, 40),
	})
	require.True(t, ok)
	assert.Equal(t, "30/04/2023", best.Date)
}
