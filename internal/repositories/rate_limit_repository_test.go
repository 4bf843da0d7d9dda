package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRateLimitSlidingWindow(t *testing.T) {
	ctx := context.Background()
	clk := testclock.NewClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	repo := NewMemoryRateLimitRepository(clk)

	for i := 0; i < 10; i++ {
		ok, err := repo.Allow(ctx, "chat:u1", 10, time.Minute)
		require.NoError(t, err)
		require.True(t, ok, "message %d should be allowed", i+1)
		clk.Advance(time.Second)
	}

	ok, err := repo.Allow(ctx, "chat:u1", 10, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "11th message inside the window must be rejected")

	// Other keys are independent.
	ok, err = repo.Allow(ctx, "chat:u2", 10, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// First hit was at 12:00:00; at 12:01:00 it has left the window.
	clk.Advance(50 * time.Second)
	ok, err = repo.Allow(ctx, "chat:u1", 10, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Allow(ctx, "chat:u1", 10, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "only one slot frees up per expired hit")
}

func TestMemoryRateLimitRejectedAttemptsAreNotRecorded(t *testing.T) {
	ctx := context.Background()
	clk := testclock.NewClock(time.Unix(1_700_000_000, 0))
	repo := NewMemoryRateLimitRepository(clk)

	ok, _ := repo.Allow(ctx, "k", 1, time.Minute)
	require.True(t, ok)
	for i := 0; i < 5; i++ {
		ok, _ = repo.Allow(ctx, "k", 1, time.Minute)
		require.False(t, ok)
	}

	clk.Advance(time.Minute)
	ok, _ = repo.Allow(ctx, "k", 1, time.Minute)
	assert.True(t, ok)
}

func TestMemoryRateLimitPrune(t *testing.T) {
	ctx := context.Background()
	clk := testclock.NewClock(time.Unix(1_700_000_000, 0))
	repo := NewMemoryRateLimitRepository(clk).(*memoryRateLimitRepository)

	_, _ = repo.Allow(ctx, "a", 5, time.Minute)
	_, _ = repo.Allow(ctx, "b", 5, time.Hour)

	clk.Advance(2 * time.Minute)
	require.NoError(t, repo.Prune(ctx))

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.NotContains(t, repo.keys, "a")
	assert.Contains(t, repo.keys, "b")
}

func TestMemoryRateLimitConcurrent(t *testing.T) {
	ctx := context.Background()
	clk := testclock.NewClock(time.Unix(1_700_000_000, 0))
	repo := NewMemoryRateLimitRepository(clk)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Allow(ctx, "burst", 10, time.Minute)
			if err == nil && ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, allowed)
}

func TestZeroLimitAlwaysRejects(t *testing.T) {
	repo := NewMemoryRateLimitRepository(nil)
	ok, err := repo.Allow(context.Background(), "k", 0, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}
