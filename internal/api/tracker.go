package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/harrison/bulkcomplete/internal/models"
)

var (
	// ErrTaskFailed is returned when a background task finished with the Failure status.
	ErrTaskFailed = errors.New("background task failed")
	// ErrTrackTimeout is returned when a task did not finish within the poll timeout.
	ErrTrackTimeout = errors.New("timed out waiting for background task")
)

// TaskStatusGetter fetches background task status.
type TaskStatusGetter interface {
	TaskStatus(ctx context.Context, taskID int64) (models.BackgroundTask, error)
}

// TrackerLogger receives progress of tracked tasks
type TrackerLogger interface {
	LogDebug(message string)
}

// Tracker polls background tasks until they finish.
type Tracker struct {
	client   TaskStatusGetter
	interval time.Duration // delay between polls
	timeout  time.Duration // 0 = no limit
	logger   TrackerLogger // can be nil
	wg       sync.WaitGroup
}

// NewTracker creates a tracker polling every interval for at most timeout.
func NewTracker(client TaskStatusGetter, interval, timeout time.Duration, logger TrackerLogger) *Tracker {
	return &Tracker{
		client:   client,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// Track polls taskID in its own goroutine and calls onSuccess or onFail once it ends.
func (t *Tracker) Track(ctx context.Context, taskID int64, onSuccess func(), onFail func(error)) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		if _, err := t.Poll(ctx, taskID); err != nil {
			onFail(err)
			return
		}
		onSuccess()
	}()
}

// Wait blocks until every tracked task has ended.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

// Poll blocks until the task finishes, the timeout passes or ctx is cancelled.
// The first status request is sent immediately.
func (t *Tracker) Poll(ctx context.Context, taskID int64) (models.BackgroundTask, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		task, err := t.client.TaskStatus(ctx, taskID)
		if err != nil {
			if ctx.Err() != nil {
				return task, t.ctxError(ctx, taskID)
			}
			return task, fmt.Errorf("task %d status: %w: %w", taskID, models.ErrTrackingLost, err)
		}
		if t.logger != nil {
			t.logger.LogDebug(fmt.Sprintf("Background task %d: %s", taskID, task.Status))
		}

		switch task.Status {
		case models.TaskStatusSuccess:
			return task, nil
		case models.TaskStatusFailure:
			return task, fmt.Errorf("task %d: %w", taskID, ErrTaskFailed)
		}

		select {
		case <-ctx.Done():
			return task, t.ctxError(ctx, taskID)
		case <-ticker.C:
		}
	}
}

func (t *Tracker) ctxError(ctx context.Context, taskID int64) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && t.timeout > 0 {
		return fmt.Errorf("task %d after %s: %w", taskID, t.timeout, ErrTrackTimeout)
	}
	return ctx.Err()
}
