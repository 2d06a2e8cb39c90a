// Package reminder delivers the daily push-up reminder and keeps its
// schedule in line with the user's settings.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/templui/pushups/internal/model"
	"github.com/templui/pushups/internal/validation"
)

// NextOccurrence returns the first time after now whose wall clock in
// now's location is clock ("HH:MM").
func NextOccurrence(now time.Time, clock string) (time.Time, error) {
	t, err := time.Parse(model.ClockLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: reminder time %q", validation.ErrMalformedInput, clock)
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, t.Hour(), t.Minute(), 0, 0, now.Location())
	}
	return next, nil
}

// Scheduler runs at most one daily reminder at a time
type Scheduler struct {
	sender Sender
	now    func() time.Time
	after  func(time.Duration) <-chan time.Time
	logger *slog.Logger

	mu     sync.Mutex
	clock  string
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type SchedulerOption func(*Scheduler)

// WithNow overrides the scheduler clock
func WithNow(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) { s.now = now }
}

// WithAfter overrides the timer used to wait for the next reminder
func WithAfter(after func(time.Duration) <-chan time.Time) SchedulerOption {
	return func(s *Scheduler) { s.after = after }
}

func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = logger }
}

func NewScheduler(sender Sender, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		sender: sender,
		now:    time.Now,
		after:  time.After,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "reminder")
	return s
}

// ScheduleReminder replaces any scheduled reminder with a daily one at
// clock. The reminder runs until CancelReminders or ctx is done.
func (s *Scheduler) ScheduleReminder(ctx context.Context, clock string) error {
	err := validation.ValidateClock(clock)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	ctx, cancel := context.WithCancel(ctx)
	s.clock = clock
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx, clock)
	}()

	s.logger.Info("reminder scheduled", "time", clock)
	return nil
}

// CancelReminders stops the scheduled reminder, if any
func (s *Scheduler) CancelReminders() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.logger.Info("reminder cancelled", "time", s.clock)
	}
	s.stopLocked()
}

// Scheduled reports the active reminder time
func (s *Scheduler) Scheduled() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock, s.cancel != nil
}

// Wait blocks until every cancelled reminder loop has returned
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) stopLocked() {
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = nil
	s.clock = ""
}

func (s *Scheduler) run(ctx context.Context, clock string) {
	var last time.Time
	for {
		now := s.now()
		next, err := NextOccurrence(now, clock)
		if err != nil {
			s.logger.Error("invalid reminder time", "time", clock, "error", err)
			return
		}
		if !next.After(last) {
			next, _ = NextOccurrence(last, clock)
		}

		select {
		case <-ctx.Done():
			return
		case <-s.after(next.Sub(now)):
		}

		err = s.sender.Send(ctx, Daily(next))
		if err != nil {
			s.logger.Error("failed to send reminder", "error", err)
		}
		last = next
	}
}
