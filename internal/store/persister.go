package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/templui/pushups/internal/storage"
)

// persister owns every backend write. Pending values are coalesced per
// slice so a newer value always replaces an older unwritten one, and a
// single goroutine writes batches in order. A value whose save failed is
// kept and retried with the next batch unless a newer value replaced it.
type persister struct {
	backend  storage.Backend
	logger   *slog.Logger
	reporter ErrorReporter
	retries  uint64
	backoff  time.Duration
	timeout  time.Duration

	mu       sync.Mutex
	pending  map[Slice][]byte
	queued   uint64 // enqueue count
	written  uint64 // enqueue count covered by finished batches
	failed   map[Slice]error // slices whose latest value is not saved
	progress chan struct{} // closed after every batch
	closed   bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

func newPersister(backend storage.Backend, logger *slog.Logger, reporter ErrorReporter, retries uint64, backoff, timeout time.Duration) *persister {
	if backoff <= 0 {
		backoff = time.Millisecond
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	p := &persister{
		backend:  backend,
		logger:   logger,
		reporter: reporter,
		retries:  retries,
		backoff:  backoff,
		timeout:  timeout,
		pending:  make(map[Slice][]byte),
		failed:   make(map[Slice]error),
		progress: make(chan struct{}),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *persister) enqueue(slice Slice, data []byte) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.logger.Warn("store closed, write dropped", "slice", slice)
		return
	}
	p.pending[slice] = data
	p.queued++
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *persister) run() {
	defer close(p.done)

	for {
		select {
		case <-p.wake:
			p.writeBatch()
		case <-p.stop:
			p.writeBatch()
			return
		}
	}
}

func (p *persister) writeBatch() {
	p.mu.Lock()
	batch := p.pending
	target := p.queued
	p.pending = make(map[Slice][]byte)
	p.mu.Unlock()

	results := make(map[Slice]error, len(batch))
	for _, slice := range sliceOrder {
		data, ok := batch[slice]
		if !ok {
			continue
		}
		results[slice] = p.save(slice, data)
	}

	p.mu.Lock()
	if target > p.written {
		p.written = target
	}
	for slice, err := range results {
		if err == nil {
			delete(p.failed, slice)
			continue
		}
		p.failed[slice] = err
		if _, newer := p.pending[slice]; !newer {
			p.pending[slice] = batch[slice]
		}
	}
	close(p.progress)
	p.progress = make(chan struct{})
	p.mu.Unlock()
}

func (p *persister) save(slice Slice, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	backoff := retry.WithMaxRetries(p.retries, retry.NewExponential(p.backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := p.backend.Save(ctx, string(slice), data)
		if err != nil {
			p.logger.Debug("slice write failed, retrying", "slice", slice, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		writeErr := &WriteError{Slice: slice, Err: err}
		p.logger.Error("failed to persist slice", "slice", slice, "error", err)
		p.reporter.ReportError(writeErr, map[string]any{
			"slice":     string(slice),
			"errorType": "StorageWriteError",
		})
		return writeErr
	}

	p.logger.Debug("slice persisted", "slice", slice, "bytes", len(data))
	return nil
}

func (p *persister) flush(ctx context.Context) error {
	p.mu.Lock()
	target := p.queued
	for p.written < target {
		progress := p.progress
		p.mu.Unlock()

		select {
		case <-progress:
		case <-ctx.Done():
			return ctx.Err()
		}

		p.mu.Lock()
	}
	err := p.failures()
	p.mu.Unlock()
	return err
}

// failures joins the errors of slices still unsaved. p.mu must be held.
func (p *persister) failures() error {
	var errs []error
	for _, slice := range sliceOrder {
		if err, ok := p.failed[slice]; ok {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *persister) close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	close(p.stop)

	select {
	case <-p.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failures()
}
