package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

func recvAttempt(t *testing.T, ch <-chan int) int {
	t.Helper()
	select {
	case n := <-ch:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not called")
		return 0
	}
}

func TestMemoryQueueRetriesThenDelivers(t *testing.T) {
	defer goleak.VerifyNone(t)

	clk := testclock.NewClock(time.Unix(0, 0))
	q := NewMemoryTaskQueue(QueueOptions{Workers: 1, MaxAttempts: 3, BufferSize: 4, BaseBackoff: time.Second, Clock: clk})

	attempts := make(chan int, 4)
	require.NoError(t, q.Start(context.Background(), func(_ context.Context, task Task) error {
		attempts <- task.Attempt
		if task.Attempt == 1 {
			return errors.New("smtp timeout")
		}
		return nil
	}))

	require.NoError(t, q.Enqueue(context.Background(), Task{Kind: TaskEmail, To: "a@example.test"}))
	assert.Equal(t, 1, recvAttempt(t, attempts))
	require.NoError(t, clk.WaitAdvance(time.Second, 2*time.Second, 1))
	assert.Equal(t, 2, recvAttempt(t, attempts))

	q.Close()
	assert.Empty(t, attempts)
}

func TestMemoryQueueDeadLettersAfterMaxAttempts(t *testing.T) {
	defer goleak.VerifyNone(t)

	clk := testclock.NewClock(time.Unix(0, 0))
	q := NewMemoryTaskQueue(QueueOptions{Workers: 2, MaxAttempts: 3, BufferSize: 4, BaseBackoff: time.Second, Clock: clk})

	attempts := make(chan int, 8)
	require.NoError(t, q.Start(context.Background(), func(_ context.Context, task Task) error {
		attempts <- task.Attempt
		return errors.New("telegram down")
	}))
	require.NoError(t, q.Enqueue(context.Background(), Task{Kind: TaskTelegram, Text: "new lead"}))

	assert.Equal(t, 1, recvAttempt(t, attempts))
	require.NoError(t, clk.WaitAdvance(time.Second, 2*time.Second, 1))
	assert.Equal(t, 2, recvAttempt(t, attempts))
	// Backoff doubles.
	require.NoError(t, clk.WaitAdvance(2*time.Second, 2*time.Second, 1))
	assert.Equal(t, 3, recvAttempt(t, attempts))

	q.Close()
	assert.Empty(t, attempts, "no attempt after the last one")
}

func TestMemoryQueueRejectsWhenFullOrClosed(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := NewMemoryTaskQueue(QueueOptions{Workers: 1, MaxAttempts: 1, BufferSize: 1})
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, Task{Kind: TaskEmail}))
	assert.ErrorIs(t, q.Enqueue(ctx, Task{Kind: TaskEmail}), utils.ErrQueueFull)

	q.Close()
	assert.ErrorIs(t, q.Enqueue(ctx, Task{Kind: TaskEmail}), utils.ErrQueueClosed)
	q.Close()
}

func TestMemoryQueueStopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	q := NewMemoryTaskQueue(QueueOptions{Workers: 3, BufferSize: 1})
	require.NoError(t, q.Start(ctx, func(context.Context, Task) error { return nil }))

	cancel()
	q.Close()
}
