package telemetry

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHub struct {
	scopes      int
	captured    []error
	breadcrumbs []*sentry.Breadcrumb
	events      []*sentry.Event
	flushes     int
	flushOK     bool
	panics      bool
}

func (h *fakeHub) WithScope(f func(scope *sentry.Scope)) {
	h.scopes++
	f(sentry.NewScope())
}

func (h *fakeHub) CaptureException(err error) *sentry.EventID {
	if h.panics {
		panic("transport down")
	}
	h.captured = append(h.captured, err)
	id := sentry.EventID("1")
	return &id
}

func (h *fakeHub) CaptureEvent(e *sentry.Event) *sentry.EventID {
	if h.panics {
		panic("transport down")
	}
	h.events = append(h.events, e)
	id := sentry.EventID("2")
	return &id
}

func (h *fakeHub) Flush(timeout time.Duration) bool {
	if h.panics {
		panic("transport down")
	}
	h.flushes++
	return h.flushOK
}

func (h *fakeHub) AddBreadcrumb(b *sentry.Breadcrumb, _ *sentry.BreadcrumbHint) {
	if h.panics {
		panic("transport down")
	}
	h.breadcrumbs = append(h.breadcrumbs, b)
}

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestReportError_CapturesInScope(t *testing.T) {
	hub := &fakeHub{}
	r := New(hub, nil)
	err := errors.New("disk full")

	r.ReportError(err, map[string]any{"errorType": "StorageWriteError", "slice": "pushups"})

	assert.Equal(t, 1, hub.scopes)
	require.Len(t, hub.captured, 1)
	assert.Same(t, err, hub.captured[0])
}

func TestReportError_NilErrorIgnored(t *testing.T) {
	hub := &fakeHub{}
	New(hub, nil).ReportError(nil, nil)
	assert.Empty(t, hub.captured)
}

func TestTrack_CapturesInfoEvent(t *testing.T) {
	hub := &fakeHub{}
	r := New(hub, nil)

	r.Track(PushupLogged, PushupLoggedProperties(25, 1))

	require.Len(t, hub.events, 1)
	e := hub.events[0]
	assert.Equal(t, sentry.LevelInfo, e.Level)
	assert.Equal(t, "Pushup Logged", e.Message)
	assert.Equal(t, "Pushup Logged", e.Tags["event"])
	assert.Equal(t, sentry.Context{"count": 25, "sets": 1}, e.Contexts["properties"])
}

func TestFlush(t *testing.T) {
	hub := &fakeHub{flushOK: true}
	assert.True(t, New(hub, nil).Flush(time.Second))
	assert.Equal(t, 1, hub.flushes)

	var buf bytes.Buffer
	slow := &fakeHub{}
	assert.False(t, New(slow, testLogger(&buf)).Flush(time.Millisecond))
	assert.Contains(t, buf.String(), "telemetry flush timed out")

	assert.True(t, Nop().Flush(time.Second))
	assert.False(t, New(&fakeHub{panics: true}, nil).Flush(time.Second))
}

func TestTrack_AddsBreadcrumb(t *testing.T) {
	hub := &fakeHub{}
	r := New(hub, nil)

	props := PushupLoggedProperties(25, 1)
	r.Track(PushupLogged, props)
	props["count"] = 0

	require.Len(t, hub.breadcrumbs, 1)
	crumb := hub.breadcrumbs[0]
	assert.Equal(t, "Pushup Logged", crumb.Message)
	assert.Equal(t, "analytics", crumb.Category)
	assert.Equal(t, 25, crumb.Data["count"], "properties are copied")
}

func TestReporter_PanickingHubIsContained(t *testing.T) {
	var buf bytes.Buffer
	r := New(&fakeHub{panics: true}, testLogger(&buf))

	assert.NotPanics(t, func() {
		r.ReportError(errors.New("boom"), nil)
		r.Track(PushupLogged, nil)
		r.Flush(time.Second)
	})
	assert.Contains(t, buf.String(), "telemetry call panicked")
}

func TestReporter_WithoutHubOnlyLogs(t *testing.T) {
	var buf bytes.Buffer
	r := New(nil, testLogger(&buf))

	r.Track(PushupLogged, PushupLoggedProperties(10, 2))
	r.ReportError(errors.New("boom"), nil)

	assert.Contains(t, buf.String(), "Pushup Logged")
	assert.Contains(t, buf.String(), "boom")
}

func TestNop_AndNilAreSafe(t *testing.T) {
	var nilReporter *Reporter

	assert.NotPanics(t, func() {
		Nop().ReportError(errors.New("x"), nil)
		Nop().Track("e", nil)
		nilReporter.ReportError(errors.New("x"), nil)
		nilReporter.Track("e", nil)
	})
}

func TestNewSentry_WithoutDSN(t *testing.T) {
	r := NewSentry("", nil)
	assert.Nil(t, r.hub)
}
