package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsJob(t *testing.T) {
	s := New()

	var runs atomic.Int32
	require.NoError(t, s.Add(Job{
		Name:     "count",
		Schedule: "@every 1s",
		Run: func(ctx context.Context) error {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			runs.Add(1)
			return nil
		},
	}))

	s.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Stop(ctx)
	}()

	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_RejectsBadSchedule(t *testing.T) {
	err := New().Add(Job{Name: "broken", Schedule: "every tuesday", Run: func(context.Context) error { return nil }})
	assert.Error(t, err)
}
