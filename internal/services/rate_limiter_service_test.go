package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishnaproperties/estate-service/internal/repositories"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

type brokenLimitRepo struct{}

func (brokenLimitRepo) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func (brokenLimitRepo) Prune(context.Context) error { return errors.New("redis: connection refused") }

func TestRateLimiterChatSend(t *testing.T) {
	ctx := context.Background()
	clk := testclock.NewClock(time.Unix(1_700_000_000, 0))
	metrics := NewMetrics(prometheus.NewRegistry())
	svc := NewRateLimiterService(repositories.NewMemoryRateLimitRepository(clk), testConfig(), metrics)

	for i := 0; i < 10; i++ {
		require.NoError(t, svc.CheckChatSend(ctx, "u1"), "message %d", i+1)
	}
	assert.ErrorIs(t, svc.CheckChatSend(ctx, "u1"), utils.ErrRateLimitExceeded)
	assert.NoError(t, svc.CheckChatSend(ctx, "u2"), "limits are per sender")
	// Sync has its own budget.
	assert.NoError(t, svc.CheckUserSync(ctx, "u1"))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.rateLimitRejections.WithLabelValues(scopeChat)))

	clk.Advance(time.Minute)
	assert.NoError(t, svc.CheckChatSend(ctx, "u1"))
}

func TestRateLimiterUserSync(t *testing.T) {
	ctx := context.Background()
	clk := testclock.NewClock(time.Unix(1_700_000_000, 0))
	svc := NewRateLimiterService(repositories.NewMemoryRateLimitRepository(clk), testConfig(), nil)

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.CheckUserSync(ctx, "u1"))
	}
	assert.ErrorIs(t, svc.CheckUserSync(ctx, "u1"), utils.ErrRateLimitExceeded)
}

func TestRateLimiterFailsOpen(t *testing.T) {
	svc := NewRateLimiterService(brokenLimitRepo{}, testConfig(), nil)
	assert.NoError(t, svc.CheckChatSend(context.Background(), "u1"))
	assert.NoError(t, svc.CheckUserSync(context.Background(), "u1"))

	assert.Error(t, NewRateLimitCleanupService(brokenLimitRepo{}).CleanupHourly(context.Background()))
}
