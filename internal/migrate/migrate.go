package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/templui/pushups/internal/model"
)

// Target is the part of the store a migration step may read and rewrite
type Target interface {
	Pushups() []model.PushupRecord
	Settings() model.UserSettings
	ReplacePushups(records []model.PushupRecord) error
	SetSchemaVersion(version int) error
}

// ErrorReporter receives failed steps. It must not panic.
type ErrorReporter interface {
	ReportError(err error, context map[string]any)
}

// Notifier shows a non-fatal notice to the user
type Notifier interface {
	Notify(title, message string)
}

// Step upgrades stored data to Version. A step runs once: after it
// succeeds its version is recorded and it is never applied again.
type Step struct {
	Version int
	Name    string
	Migrate func(ctx context.Context, t Target) error
}

// StepError is returned by Run when a step fails
type StepError struct {
	Version int
	Name    string
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("migration %d (%s): %v", e.Version, e.Name, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

const (
	noticeTitle   = "Data Update Error"
	noticeMessage = "There was a problem updating your pushup data. Your data is safe, but some features might not work correctly. Please contact support if this persists."
)

type Runner struct {
	steps    []Step
	reporter ErrorReporter
	notifier Notifier
	logger   *slog.Logger
}

// NewRunner sorts steps by version. reporter, notifier and logger may be nil.
func NewRunner(steps []Step, reporter ErrorReporter, notifier Notifier, logger *slog.Logger) *Runner {
	sorted := slices.Clone(steps)
	slices.SortFunc(sorted, func(a, b Step) int { return a.Version - b.Version })

	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		steps:    sorted,
		reporter: reporter,
		notifier: notifier,
		logger:   logger.With("component", "migrate"),
	}
}

// CurrentVersion is the newest schema version the steps know about
func (r *Runner) CurrentVersion() int {
	if len(r.steps) == 0 {
		return 0
	}
	return r.steps[len(r.steps)-1].Version
}

// Run applies every step newer than the stored schema version in order.
// The first failing step is reported and stops applying later steps this
// start. Steps applied before it are kept, and the version stays just below
// the failed step so it is retried next start. The version reached is
// stored in the settings and returned. A returned *StepError is not fatal.
func (r *Runner) Run(ctx context.Context, t Target) (int, error) {
	current := t.Settings().SchemaVersion
	version := current

	var stepErr *StepError
	for _, step := range r.steps {
		if step.Version <= version {
			continue
		}

		err := r.apply(ctx, step, t)
		if err != nil {
			stepErr = &StepError{Version: step.Version, Name: step.Name, Err: err}
			r.fail(stepErr, current)
			break
		}

		r.logger.Info("migration applied", "version", step.Version, "name", step.Name)
		version = step.Version
	}

	err := t.SetSchemaVersion(version)
	if err != nil {
		return version, errors.Join(stepErr, fmt.Errorf("failed to record schema version: %w", err))
	}

	if stepErr != nil {
		return version, stepErr
	}
	return version, nil
}

// apply runs one step, turning a panic into an error
func (r *Runner) apply(ctx context.Context, step Step, t Target) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	if step.Migrate == nil {
		return errors.New("step has no migrate function")
	}
	return step.Migrate(ctx, t)
}

func (r *Runner) fail(stepErr *StepError, current int) {
	r.logger.Error("migration failed",
		"version", stepErr.Version,
		"name", stepErr.Name,
		"error", stepErr.Err)

	if r.notifier != nil {
		r.notifier.Notify(noticeTitle, noticeMessage)
	}

	if r.reporter != nil {
		r.reporter.ReportError(stepErr, map[string]any{
			"migrationVersion": stepErr.Version,
			"currentVersion":   current,
			"errorType":        "MigrationError",
		})
	}
}
