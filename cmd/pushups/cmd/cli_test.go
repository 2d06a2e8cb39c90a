package cmd

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/pushups/internal/app"
	"github.com/templui/pushups/internal/config"
	"github.com/templui/pushups/internal/migrate"
	"github.com/templui/pushups/internal/model"
	"github.com/templui/pushups/internal/storage"
	"github.com/templui/pushups/internal/validation"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// harness runs each command against a fresh app over one shared backend,
// so state only carries over through persistence.
type harness struct {
	t       *testing.T
	backend *storage.MemoryBackend
}

func newHarness(t *testing.T) *harness {
	return &harness{t: t, backend: storage.NewMemoryBackend()}
}

func (h *harness) open(ctx context.Context, notifier migrate.Notifier) (*app.App, error) {
	cfg := &config.Config{
		AppName:       "Pushups",
		AppEnv:        "test",
		StorageDriver: config.StorageMemory,
		WriteRetries:  1,
		WriteTimeout:  time.Second,
		Timezone:      "UTC",
	}
	return app.NewWithBackend(ctx, cfg, h.backend, notifier)
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()

	cli := New(h.open)
	root := cli.Command()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	require.NoError(h.t, cli.Close(context.Background()))
	return out.String(), err
}

func (h *harness) settings() model.UserSettings {
	h.t.Helper()
	a, err := h.open(context.Background(), nil)
	require.NoError(h.t, err)
	defer a.Close(context.Background())
	return a.Store.Settings()
}

func (h *harness) today() (model.PushupRecord, bool) {
	h.t.Helper()
	a, err := h.open(context.Background(), nil)
	require.NoError(h.t, err)
	defer a.Close(context.Background())
	return a.Store.PushupsOn(a.Store.Today())
}

func TestAdd_LogsAndReportsProgress(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("add", "25", "--time", "08:00")
	require.NoError(t, err)
	assert.Equal(t, "Logged 25 push-ups at 08:00. Today: 25 / 30\n", out)

	out, err = h.run("add", "5", "--time", "07:30")
	require.NoError(t, err)
	assert.Contains(t, out, "Today: 30 / 30 ✓")

	out, err = h.run("today")
	require.NoError(t, err)
	assert.Equal(t, "Today: 30 / 30 ✓\n  07:30  5\n  08:00  25\n", out)
}

func TestAdd_OtherDate(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("add", "12", "--time", "09:00", "--date", "01/05/2023")
	require.NoError(t, err)
	assert.Contains(t, out, "01/05/2023: 12 / 30")

	_, ok := h.today()
	assert.False(t, ok)
}

func TestAdd_RejectsBadInput(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("add", "lots")
	assert.ErrorContains(t, err, "count must be a number")

	_, err = h.run("add", "0")
	assert.ErrorIs(t, err, validation.ErrMalformedInput)

	_, err = h.run("add", "10", "--time", "8am")
	assert.ErrorIs(t, err, validation.ErrMalformedInput)

	out, err := h.run("total")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)
}

func TestToday_Empty(t *testing.T) {
	out, err := newHarness(t).run("today")
	require.NoError(t, err)
	assert.Equal(t, "Today: 0 / 30\nNo sets logged yet.\n", out)
}

func TestTotal_FormatsNumbers(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("add", "1200", "--time", "10:00", "--date", "01/05/2023")
	require.NoError(t, err)
	_, err = h.run("add", "34", "--time", "10:00")
	require.NoError(t, err)

	out, err := h.run("total")
	require.NoError(t, err)
	assert.Equal(t, "1,234\n", out)
}

func TestHistory_NewestFirstWithLimit(t *testing.T) {
	h := newHarness(t)
	for _, date := range []string{"02/05/2023", "30/04/2023", "01/05/2023"} {
		_, err := h.run("add", "30", "--time", "10:00", "--date", date)
		require.NoError(t, err)
	}

	out, err := h.run("history", "-n", "2")
	require.NoError(t, err)
	assert.Equal(t, "02/05/2023  30 / 30 ✓  (1 sets)\n01/05/2023  30 / 30 ✓  (1 sets)\n", out)
}

func TestHistory_Empty(t *testing.T) {
	out, err := newHarness(t).run("history")
	require.NoError(t, err)
	assert.Equal(t, "Nothing logged yet.\n", out)
}

func TestStats_CountsStreak(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("add", "30", "--time", "00:00")
	require.NoError(t, err)

	out, err := h.run("stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Streak: 1 days")
	assert.Contains(t, out, "Week:   S M T W T F S")
	assert.Contains(t, out, "Total:  30")
}

func TestSettings_UpdateAndShow(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("settings")
	require.NoError(t, err)
	assert.Equal(t, "Daily goal: 30\nReminder:   at 12:00\nRun `pushups onboard` to finish setup.\n", out)

	_, err = h.run("settings", "--goal", "50", "--reminder-time", "07:00")
	require.NoError(t, err)

	settings := h.settings()
	assert.Equal(t, 50, settings.DailyGoal)
	assert.Equal(t, "07:00", settings.ReminderTime)
	assert.True(t, settings.SendReminder)

	_, err = h.run("settings", "--reminder=false")
	require.NoError(t, err)
	assert.False(t, h.settings().SendReminder)
	assert.Equal(t, 50, h.settings().DailyGoal)
}

func TestSettings_GoalChangeKeepsTodaySnapshot(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("add", "10", "--time", "08:00")
	require.NoError(t, err)

	_, err = h.run("settings", "--goal", "50")
	require.NoError(t, err)
	record, ok := h.today()
	require.True(t, ok)
	assert.Equal(t, 30, record.DailyGoal)

	_, err = h.run("settings", "--goal", "50", "--apply-today")
	require.NoError(t, err)
	record, _ = h.today()
	assert.Equal(t, 50, record.DailyGoal)
}

func TestSettings_ApplyTodayWithoutRecord(t *testing.T) {
	out, err := newHarness(t).run("settings", "--goal", "40", "--apply-today")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing logged today")
}

func TestSettings_RejectsInvalid(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("settings", "--goal", "0")
	assert.ErrorIs(t, err, validation.ErrMalformedInput)
	assert.Equal(t, 30, h.settings().DailyGoal)
}

func TestOnboard(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("onboard", "--goal", "20", "--reminder-time", "18:30")
	require.NoError(t, err)
	assert.Contains(t, out, "You're all set.")
	assert.NotContains(t, out, "pushups onboard")

	settings := h.settings()
	assert.True(t, settings.OnboardingCompleted)
	assert.True(t, settings.RemindersActive())
	assert.Equal(t, 20, settings.DailyGoal)
	assert.Equal(t, "18:30", settings.ReminderTime)
}

func TestClear(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("add", "10", "--time", "08:00")
	require.NoError(t, err)
	_, err = h.run("onboard")
	require.NoError(t, err)

	_, err = h.run("clear")
	assert.ErrorIs(t, err, errNeedsConfirmation)

	out, err := h.run("clear", "--yes")
	require.NoError(t, err)
	assert.Equal(t, "All data cleared.\n", out)

	out, err = h.run("total")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)
	assert.False(t, h.settings().OnboardingCompleted)
}

func TestRemind_StopsWithContext(t *testing.T) {
	h := newHarness(t)
	cli := New(h.open)
	root := cli.Command()
	root.SetArgs([]string{"remind"})
	root.SetOut(&bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("remind did not stop")
	}
	require.NoError(t, cli.Close(context.Background()))
}

func TestRemind_LogFlag(t *testing.T) {
	h := newHarness(t)
	cli := New(h.open)
	root := cli.Command()
	root.SetArgs([]string{"remind", "--log"})
	var out bytes.Buffer
	root.SetOut(&out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("remind did not stop")
	}
	require.NoError(t, cli.Close(context.Background()))
	assert.Empty(t, out.String())
}

func TestDBDown_NeedsConfirmationAndDatabase(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("db", "down")
	assert.ErrorIs(t, err, errNeedsRollbackConfirmation)

	_, err = h.run("db", "down", "--yes")
	assert.ErrorContains(t, err, "has no database schema")
}

func TestTerminalNotifier(t *testing.T) {
	var buf bytes.Buffer
	terminalNotifier{w: &buf}.Notify("Data Update Error", "try again")
	assert.Equal(t, "Data Update Error: try again\n", buf.String())
}
