package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mdblog/internal/metrics"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Runner is anything that performs one reconciliation.
type Runner interface {
	Run(ctx context.Context) (Result, error)
}

// Task runs a Runner once in the background. A failure or panic is logged
// and recorded; it never reaches the caller's goroutine.
type Task struct {
	mu     sync.RWMutex
	status Status
	result Result
	err    error
	done   chan struct{}
}

// Start launches r in its own goroutine and returns immediately.
func Start(ctx context.Context, r Runner, logger *slog.Logger) *Task {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Task{status: StatusPending, done: make(chan struct{})}
	go t.run(ctx, r, logger)
	return t
}

func (t *Task) run(ctx context.Context, r Runner, logger *slog.Logger) {
	defer close(t.done)

	t.set(StatusRunning, Result{}, nil)
	started := time.Now()

	res, err := safeRun(ctx, r)
	if err != nil {
		t.set(StatusFailed, res, err)
		metrics.RecordSyncRun(string(StatusFailed))
		logger.Error("markdown sync failed",
			"error", err,
			"deleted", res.Deleted,
			"inserted", res.Inserted,
			"updated", res.Updated,
			"elapsed", time.Since(started))
		return
	}

	t.set(StatusSucceeded, res, nil)
	metrics.RecordSyncRun(string(StatusSucceeded))
	logger.Info("markdown sync finished",
		"deleted", res.Deleted,
		"inserted", res.Inserted,
		"updated", res.Updated,
		"unchanged", res.Unchanged,
		"elapsed", time.Since(started))
}

func safeRun(ctx context.Context, r Runner) (res Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("markdown sync panic: %v", p)
		}
	}()
	return r.Run(ctx)
}

func (t *Task) set(s Status, res Result, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = s
	t.result = res
	t.err = err
}

// Done is closed once the run has finished either way.
func (t *Task) Done() <-chan struct{} { return t.done }

func (t *Task) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

func (t *Task) Result() Result {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.result
}

func (t *Task) Err() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.err
}
