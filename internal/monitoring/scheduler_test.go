package monitoring

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchedulerRejectsBadSchedule(t *testing.T) {
	_, err := NewScheduler("not a cron spec", "noop", time.Second, func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestSchedulerRunsTaskUntilCancelled(t *testing.T) {
	var runs atomic.Int32
	s, err := NewScheduler("@every 1s", "count", time.Second, func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		runs.Add(1)
		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestExecuteSurvivesTaskFailure(t *testing.T) {
	var calls int
	s, err := NewScheduler("0 3 * * *", "failing", time.Second, func(context.Context) error {
		calls++
		return errors.New("database is locked")
	})
	require.NoError(t, err)

	s.execute()
	s.execute()
	assert.Equal(t, 2, calls)
}
