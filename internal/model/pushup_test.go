package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushupRecord_Total(t *testing.T) {
	record := PushupRecord{
		Date: "01/05/2023",
		Sets: []PushupSet{{Pushups: 10, Time: "10:00"}, {Pushups: 15, Time: "14:00"}},
	}
	assert.Equal(t, 25, record.Total())
	assert.Equal(t, 0, PushupRecord{}.Total())
}

func TestPushupRecord_GoalMet(t *testing.T) {
	record := PushupRecord{Sets: []PushupSet{{Pushups: 30, Time: "10:00"}}}
	assert.True(t, record.GoalMet(30))
	assert.False(t, record.GoalMet(31))
	assert.False(t, PushupRecord{}.GoalMet(0), "an empty day never meets a goal")
}

func TestPushupRecord_CloneDoesNotAlias(t *testing.T) {
	record := PushupRecord{Date: "01/05/2023", Sets: []PushupSet{{Pushups: 1, Time: "10:00"}}}
	clone := record.Clone()
	clone.Sets[0].Pushups = 99

	assert.Equal(t, 1, record.Sets[0].Pushups)
}

func TestPushupSet_UnmarshalLenient(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want PushupSet
	}{
		{"number", `{"pushups":12,"time":"09:00"}`, PushupSet{Pushups: 12, Time: "09:00"}},
		{"numeric string", `{"pushups":"7","time":"09:00"}`, PushupSet{Pushups: 7, Time: "09:00"}},
		{"garbage string", `{"pushups":"lots","time":"09:00"}`, PushupSet{Pushups: 0, Time: "09:00"}},
		{"null", `{"pushups":null,"time":"09:00"}`, PushupSet{Pushups: 0, Time: "09:00"}},
		{"missing", `{"time":"09:00"}`, PushupSet{Pushups: 0, Time: "09:00"}},
		{"huge number", `{"pushups":1e30,"time":"09:00"}`, PushupSet{Pushups: 0, Time: "09:00"}},
		{"huge string", `{"pushups":"99999999999","time":"09:00"}`, PushupSet{Pushups: 0, Time: "09:00"}},
		{"fraction", `{"pushups":12.7,"time":"09:00"}`, PushupSet{Pushups: 12, Time: "09:00"}},
		{"non-string time", `{"pushups":3,"time":900}`, PushupSet{Pushups: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got PushupSet
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateHelpers(t *testing.T) {
	day := time.Date(2023, time.May, 1, 8, 5, 0, 0, time.UTC)
	assert.Equal(t, "01/05/2023", FormatDate(day))
	assert.Equal(t, "08:05", FormatClock(day))

	parsed, err := ParseDate("01/05/2023", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC), parsed)
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, 30, s.DailyGoal)
	assert.True(t, s.SendReminder)
	assert.Equal(t, "12:00", s.ReminderTime)
	assert.False(t, s.OnboardingCompleted)
	assert.False(t, s.RemindersActive())
}
