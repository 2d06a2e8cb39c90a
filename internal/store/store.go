// Package store is the single source of truth for push-up history and
// user settings.
//
// A Store mirrors two slices, pushups and settings, in memory and writes
// each mutation through to a storage.Backend. Memory is updated first and
// the durable write is handed to a background writer, so reads always
// reflect the latest action even while a write is in flight. Callers that
// need durability confirmation call Flush.
//
// Consumers observe changes by registering a Listener with Subscribe.
// Listeners run synchronously after each mutation commits.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/templui/pushups/internal/model"
	"github.com/templui/pushups/internal/storage"
	"github.com/templui/pushups/internal/validation"
)

// Slice names a top-level partition of the store's state
type Slice string

const (
	SlicePushups  Slice = "pushups"
	SliceSettings Slice = "settings"
)

// sliceOrder fixes the order slices are written in a batch
var sliceOrder = []Slice{SlicePushups, SliceSettings}

// ErrorReporter receives errors the store recovers from
type ErrorReporter interface {
	ReportError(err error, context map[string]any)
}

type nopReporter struct{}

func (nopReporter) ReportError(error, map[string]any) {}

// ReadError means a slice could not be loaded and defaults were used
type ReadError struct {
	Slice Slice
	Err   error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Slice, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError means a slice could not be persisted. Memory is unaffected.
type WriteError struct {
	Slice Slice
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Slice, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

type Store struct {
	mu       sync.RWMutex
	pushups  []model.PushupRecord
	settings model.UserSettings

	now       func() time.Time
	logger    *slog.Logger
	reporter  ErrorReporter
	persister *persister
	listeners *registry
}

type options struct {
	now          func() time.Time
	loc          *time.Location
	logger       *slog.Logger
	reporter     ErrorReporter
	retries      uint64
	backoff      time.Duration
	writeTimeout time.Duration
}

type Option func(*options)

// WithClock overrides the clock used to resolve "today"
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLocation sets the zone record dates are formatted in
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.loc = loc }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithErrorReporter(reporter ErrorReporter) Option {
	return func(o *options) { o.reporter = reporter }
}

// WithWriteRetries sets how often a failed save is retried and the
// initial backoff between attempts.
func WithWriteRetries(retries int, backoff time.Duration) Option {
	return func(o *options) {
		if retries < 0 {
			retries = 0
		}
		o.retries = uint64(retries)
		o.backoff = backoff
	}
}

// WithWriteTimeout bounds a single save attempt sequence
func WithWriteTimeout(timeout time.Duration) Option {
	return func(o *options) { o.writeTimeout = timeout }
}

// New loads both slices from backend and starts the background writer.
// Missing slices start from their defaults. Unreadable or corrupt slices
// are reported and replaced by defaults. New never writes to backend.
func New(ctx context.Context, backend storage.Backend, opts ...Option) (*Store, error) {
	if backend == nil {
		return nil, errors.New("store requires a backend")
	}

	o := options{
		loc:          time.Local,
		retries:      3,
		backoff:      50 * time.Millisecond,
		writeTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.reporter == nil {
		o.reporter = nopReporter{}
	}
	if o.now == nil {
		loc := o.loc
		o.now = func() time.Time { return time.Now().In(loc) }
	}

	logger := o.logger.With("component", "store")

	s := &Store{
		now:       o.now,
		logger:    logger,
		reporter:  o.reporter,
		listeners: newRegistry(logger),
	}

	s.pushups = loadPushups(ctx, backend, s.readFailed)
	s.settings = loadSettings(ctx, backend, s.readFailed)

	s.persister = newPersister(backend, logger, o.reporter, o.retries, o.backoff, o.writeTimeout)

	logger.Debug("store loaded",
		"records", len(s.pushups),
		"schema_version", s.settings.SchemaVersion)
	return s, nil
}

func (s *Store) readFailed(slice Slice, err error) {
	readErr := &ReadError{Slice: slice, Err: err}
	s.logger.Warn("failed to load slice, using defaults", "slice", slice, "error", err)
	s.reporter.ReportError(readErr, map[string]any{
		"slice":     string(slice),
		"errorType": "StorageReadError",
	})
}

func loadSlice(ctx context.Context, backend storage.Backend, slice Slice, dst any, onError func(Slice, error)) bool {
	data, err := backend.Load(ctx, string(slice))
	if errors.Is(err, storage.ErrNotFound) {
		return false
	}
	if err != nil {
		onError(slice, err)
		return false
	}

	err = json.Unmarshal(data, dst)
	if err != nil {
		onError(slice, fmt.Errorf("corrupt data: %w", err))
		return false
	}
	return true
}

func loadPushups(ctx context.Context, backend storage.Backend, onError func(Slice, error)) []model.PushupRecord {
	var records []model.PushupRecord
	if !loadSlice(ctx, backend, SlicePushups, &records, onError) || records == nil {
		return []model.PushupRecord{}
	}

	for i := range records {
		if records[i].Sets == nil {
			records[i].Sets = []model.PushupSet{}
		}
	}
	return records
}

func loadSettings(ctx context.Context, backend storage.Backend, onError func(Slice, error)) model.UserSettings {
	// Decode over the defaults so fields older revisions never wrote keep
	// their default values.
	settings := model.DefaultSettings()
	if !loadSlice(ctx, backend, SliceSettings, &settings, onError) {
		return model.DefaultSettings()
	}

	defaults := model.DefaultSettings()
	if validation.ValidateGoal(settings.DailyGoal) != nil {
		onError(SliceSettings, fmt.Errorf("invalid daily goal %d", settings.DailyGoal))
		settings.DailyGoal = defaults.DailyGoal
	}
	if validation.ValidateClock(settings.ReminderTime) != nil {
		onError(SliceSettings, fmt.Errorf("invalid reminder time %q", settings.ReminderTime))
		settings.ReminderTime = defaults.ReminderTime
	}
	if settings.SchemaVersion < 0 {
		settings.SchemaVersion = 0
	}
	return settings
}

// Pushups returns a copy of the pushups slice
func (s *Store) Pushups() []model.PushupRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneRecords(s.pushups)
}

// Settings returns the current settings
func (s *Store) Settings() model.UserSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Today returns the current local date as a record date
func (s *Store) Today() string {
	return model.FormatDate(s.now())
}

// Now returns the store clock's current time
func (s *Store) Now() time.Time {
	return s.now()
}

// Subscribe registers l for change events and returns its subscription id
func (s *Store) Subscribe(l Listener) string {
	return s.listeners.subscribe(l)
}

func (s *Store) Unsubscribe(id string) {
	s.listeners.unsubscribe(id)
}

// Flush waits until every write issued before the call has been attempted.
// It returns a *WriteError for every slice whose latest value is still
// unsaved, however many later writes of other slices succeeded.
func (s *Store) Flush(ctx context.Context) error {
	return s.persister.flush(ctx)
}

// Close flushes pending writes and stops the background writer.
// Actions after Close still update memory but are no longer persisted.
func (s *Store) Close(ctx context.Context) error {
	return s.persister.close(ctx)
}
