package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRejectsBeforeStart(t *testing.T) {
	q := NewQueue("revalidate", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{ID: "1"}))
}

func TestQueueProcessesJobs(t *testing.T) {
	done := make(chan string, 1)
	q := NewQueue("revalidate", func(_ context.Context, job Job) error {
		done <- job.Payload.(string)
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "1", Key: "term-1", Payload: "term-1"}))

	select {
	case got := <-done:
		assert.Equal(t, "term-1", got)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed")
	}
}

func TestQueueCoalescesPendingKeys(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	q := NewQueue("revalidate", func(_ context.Context, job Job) error {
		if job.ID == "blocker" {
			<-release
		}
		atomic.AddInt32(&calls, 1)
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 8})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "blocker"}))
	require.Eventually(t, func() bool { return len(q.jobs) == 0 }, time.Second, 5*time.Millisecond)

	require.NoError(t, q.Enqueue(Job{ID: "a", Key: "term-1"}))
	require.NoError(t, q.Enqueue(Job{ID: "b", Key: "term-1"}))
	assert.Equal(t, 1, q.Pending())

	close(release)
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, q.Pending())
}

func TestQueueRetriesFailures(t *testing.T) {
	var attempts int32
	q := NewQueue("revalidate", func(context.Context, Job) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("redis unavailable")
		}
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: 5 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "1", Key: "term-1"}))
	require.Eventually(t, func() bool { return atomic.LoadInt32(&attempts) == 3 }, 2*time.Second, 5*time.Millisecond)
}
