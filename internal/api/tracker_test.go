package api

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/bulkcomplete/internal/models"
)

type scriptedStatus struct {
	mu       sync.Mutex
	statuses []string
	err      error
	calls    int
}

func (s *scriptedStatus) TaskStatus(_ context.Context, taskID int64) (models.BackgroundTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return models.BackgroundTask{}, s.err
	}
	status := s.statuses[0]
	if len(s.statuses) > 1 {
		s.statuses = s.statuses[1:]
	}
	return models.BackgroundTask{ID: taskID, Status: status}, nil
}

type debugLog struct {
	mu    sync.Mutex
	lines int
}

func (d *debugLog) LogDebug(string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lines++
}

func TestTracker_PollUntilSuccess(t *testing.T) {
	status := &scriptedStatus{statuses: []string{"Pending", "Running", "Success"}}
	log := &debugLog{}
	tracker := NewTracker(status, time.Millisecond, time.Second, log)

	task, err := tracker.Poll(context.Background(), 8)

	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusSuccess, task.Status)
	assert.Equal(t, 3, status.calls)
	assert.Equal(t, 3, log.lines)
}

func TestTracker_PollFailure(t *testing.T) {
	status := &scriptedStatus{statuses: []string{"Running", "Failure"}}
	tracker := NewTracker(status, time.Millisecond, time.Second, nil)

	_, err := tracker.Poll(context.Background(), 8)

	assert.True(t, errors.Is(err, ErrTaskFailed))
}

func TestTracker_PollTimeout(t *testing.T) {
	status := &scriptedStatus{statuses: []string{"Running"}}
	tracker := NewTracker(status, 5*time.Millisecond, 30*time.Millisecond, nil)

	_, err := tracker.Poll(context.Background(), 8)

	assert.True(t, errors.Is(err, ErrTrackTimeout))
}

func TestTracker_PollStatusError(t *testing.T) {
	boom := errors.New("unreachable")
	tracker := NewTracker(&scriptedStatus{err: boom}, time.Millisecond, time.Second, nil)

	_, err := tracker.Poll(context.Background(), 8)

	assert.True(t, errors.Is(err, boom))
	assert.True(t, errors.Is(err, models.ErrTrackingLost))
	assert.False(t, errors.Is(err, ErrTaskFailed))
}

func TestTracker_PollCancelled(t *testing.T) {
	status := &scriptedStatus{statuses: []string{"Running"}}
	tracker := NewTracker(status, time.Hour, 0, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tracker.Poll(ctx, 8)

	assert.True(t, errors.Is(err, context.Canceled))
}

func TestTracker_TrackCallbacks(t *testing.T) {
	tracker := NewTracker(&scriptedStatus{statuses: []string{"Success"}}, time.Millisecond, time.Second, nil)

	var mu sync.Mutex
	var outcomes []string
	tracker.Track(context.Background(), 1, func() {
		mu.Lock()
		outcomes = append(outcomes, "success")
		mu.Unlock()
	}, func(error) {
		mu.Lock()
		outcomes = append(outcomes, "fail")
		mu.Unlock()
	})

	failing := NewTracker(&scriptedStatus{statuses: []string{"Failure"}}, time.Millisecond, time.Second, nil)
	var failErr error
	failing.Track(context.Background(), 2, func() {}, func(err error) { failErr = err })

	tracker.Wait()
	failing.Wait()

	assert.Equal(t, []string{"success"}, outcomes)
	assert.True(t, errors.Is(failErr, ErrTaskFailed))
}
