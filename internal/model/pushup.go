package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the "DD/MM/YYYY" day key used for records
	DateLayout = "02/01/2006"
	// ClockLayout is the canonical zero-padded 24h "HH:MM" set time
	ClockLayout = "15:04"
)

type PushupSet struct {
	Pushups int    `json:"pushups"`
	Time    string `json:"time"`
}

// PushupRecord holds every set logged on one local day.
// DailyGoal is a snapshot of the goal when the day was first logged.
type PushupRecord struct {
	Date      string      `json:"date"`
	Sets      []PushupSet `json:"sets"`
	DailyGoal int         `json:"dailyGoal"`
}

// Total sums the pushups of every set in the record
func (r PushupRecord) Total() int {
	total := 0
	for _, set := range r.Sets {
		total += set.Pushups
	}
	return total
}

// GoalMet reports whether the record reached goal with at least one pushup
func (r PushupRecord) GoalMet(goal int) bool {
	total := r.Total()
	return total > 0 && total >= goal
}

// Clone returns a deep copy so callers can't alias store state
func (r PushupRecord) Clone() PushupRecord {
	sets := make([]PushupSet, len(r.Sets))
	copy(sets, r.Sets)
	r.Sets = sets
	return r
}

func CloneRecords(records []PushupRecord) []PushupRecord {
	out := make([]PushupRecord, len(records))
	for i, record := range records {
		out[i] = record.Clone()
	}
	return out
}

// FormatDate formats t as a record date in t's own location
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a "DD/MM/YYYY" record date in loc
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, date, loc)
}

// FormatClock formats t as a canonical set time
func FormatClock(t time.Time) string {
	return t.Format(ClockLayout)
}

// UnmarshalJSON tolerates older or hand-edited data: a count stored as a
// numeric string is parsed, and anything non-numeric decodes as 0.
func (s *PushupSet) UnmarshalJSON(data []byte) error {
	var raw struct {
		Pushups json.RawMessage `json:"pushups"`
		Time    json.RawMessage `json:"time"`
	}
	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}

	s.Pushups = lenientInt(raw.Pushups)
	s.Time = ""
	if len(raw.Time) > 0 {
		var t string
		if json.Unmarshal(raw.Time, &t) == nil {
			s.Time = t
		}
	}
	return nil
}

// lenientInt reads a count stored as a number or numeric string.
// Anything else, including counts outside the int32 range, reads as 0.
func lenientInt(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}

	var n float64
	if json.Unmarshal(raw, &n) == nil {
		if n < math.MinInt32 || n > math.MaxInt32 {
			return 0
		}
		return int(n)
	}

	var str string
	if json.Unmarshal(raw, &str) == nil {
		v, err := strconv.ParseInt(strings.TrimSpace(str), 10, 32)
		if err == nil {
			return int(v)
		}
	}
	return 0
}
