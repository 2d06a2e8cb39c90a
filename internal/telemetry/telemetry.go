// Package telemetry reports recoverable errors and usage events.
//
// Reporting never fails the caller: a broken or unconfigured backend only
// costs the report.
package telemetry

import (
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/getsentry/sentry-go"
)

// Hub is the part of a sentry hub the reporter uses
type Hub interface {
	WithScope(f func(scope *sentry.Scope))
	CaptureException(exception error) *sentry.EventID
	CaptureEvent(event *sentry.Event) *sentry.EventID
	AddBreadcrumb(breadcrumb *sentry.Breadcrumb, hint *sentry.BreadcrumbHint)
	Flush(timeout time.Duration) bool
}

// Reporter sends errors and analytics events to Sentry. The zero value
// and a nil *Reporter only log.
type Reporter struct {
	hub    Hub
	logger *slog.Logger
}

// New wraps hub. A nil hub gives a log-only reporter.
func New(hub Hub, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{hub: hub, logger: logger.With("component", "telemetry")}
}

// NewSentry uses the current Sentry hub when a DSN is configured.
// logger.Init initializes the client.
func NewSentry(dsn string, logger *slog.Logger) *Reporter {
	if dsn == "" || sentry.CurrentHub().Client() == nil {
		return New(nil, logger)
	}
	return New(sentry.CurrentHub(), logger)
}

// Nop discards everything
func Nop() *Reporter {
	return &Reporter{}
}

func (r *Reporter) log() *slog.Logger {
	if r == nil || r.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.logger
}

// ReportError records err with structured context. The "errorType" key,
// when present, also becomes a tag.
func (r *Reporter) ReportError(err error, context map[string]any) {
	if err == nil {
		return
	}

	r.log().Debug("reporting error", "error", err, "context", context)

	if r == nil || r.hub == nil {
		return
	}

	defer r.recover("report error")

	r.hub.WithScope(func(scope *sentry.Scope) {
		if len(context) > 0 {
			scope.SetContext("details", sentry.Context(maps.Clone(context)))
		}
		if errorType, ok := context["errorType"].(string); ok {
			scope.SetTag("errorType", errorType)
		}
		r.hub.CaptureException(err)
	})
}

// Track sends a usage event as an info-level Sentry event tagged with its
// name. It is also left as a breadcrumb for later error reports.
func (r *Reporter) Track(event string, properties map[string]any) {
	r.log().Info("event tracked", "event", event, "properties", properties)

	if r == nil || r.hub == nil {
		return
	}

	defer r.recover("track")

	r.hub.AddBreadcrumb(&sentry.Breadcrumb{
		Type:     "user",
		Category: "analytics",
		Message:  event,
		Data:     maps.Clone(properties),
		Level:    sentry.LevelInfo,
	}, nil)

	e := sentry.NewEvent()
	e.Level = sentry.LevelInfo
	e.Message = event
	e.Tags["event"] = event
	if len(properties) > 0 {
		e.Contexts["properties"] = sentry.Context(maps.Clone(properties))
	}
	r.hub.CaptureEvent(e)
}

// Flush waits up to timeout for queued reports to be sent. A short-lived
// process calls it before exiting.
func (r *Reporter) Flush(timeout time.Duration) bool {
	if r == nil || r.hub == nil {
		return true
	}

	defer r.recover("flush")

	ok := r.hub.Flush(timeout)
	if !ok {
		r.log().Warn("telemetry flush timed out", "timeout", timeout)
	}
	return ok
}

func (r *Reporter) recover(op string) {
	if rec := recover(); rec != nil {
		r.log().Warn("telemetry call panicked", "op", op, "panic", fmt.Sprint(rec))
	}
}

// PushupLogged is tracked on every successful add
const PushupLogged = "Pushup Logged"

// PushupLoggedProperties builds the properties of a PushupLogged event
func PushupLoggedProperties(count int, sets int) map[string]any {
	return map[string]any{"count": count, "sets": sets}
}
