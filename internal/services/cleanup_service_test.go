package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-repositories"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

type fakeEventRepo struct {
	repositories.EventRepository
	expired []repositories.ExpiredEvent
	rollups map[string]map[string]int64
	deleted []any
	cutoffs []time.Time
	// raceOnce makes the first delete report a concurrent change.
	raceOnce bool
}

func (f *fakeEventRepo) ExpiredBatch(_ context.Context, cutoff time.Time, limit int64) ([]repositories.ExpiredEvent, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	n := int(limit)
	if n > len(f.expired) {
		n = len(f.expired)
	}
	return append([]repositories.ExpiredEvent(nil), f.expired[:n]...), nil
}

func (f *fakeEventRepo) DeleteAndRollUp(_ context.Context, ids []any, rollup map[string]map[string]int64) error {
	if f.raceOnce {
		f.raceOnce = false
		return utils.ErrBatchChanged
	}
	f.deleted = append(f.deleted, ids...)
	f.expired = f.expired[len(ids):]
	if f.rollups == nil {
		f.rollups = map[string]map[string]int64{}
	}
	for month, byType := range rollup {
		if f.rollups[month] == nil {
			f.rollups[month] = map[string]int64{}
		}
		for typ, n := range byType {
			f.rollups[month][typ] += n
		}
	}
	return nil
}

type fakeNotificationRepo struct {
	repositories.NotificationRepository
	expired []any
	cutoffs []time.Time
}

func (f *fakeNotificationRepo) ExpiredBatch(_ context.Context, cutoff time.Time, limit int64) ([]any, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	n := int(limit)
	if n > len(f.expired) {
		n = len(f.expired)
	}
	return append([]any(nil), f.expired[:n]...), nil
}

func (f *fakeNotificationRepo) DeleteBatch(_ context.Context, ids []any) error {
	f.expired = f.expired[len(ids):]
	return nil
}

func TestCleanupRun(t *testing.T) {
	var events []repositories.ExpiredEvent
	for i := 0; i < cleanupBatchSize+10; i++ {
		events = append(events, repositories.ExpiredEvent{ID: fmt.Sprintf("e%d", i), Type: string(models.EventSiteView), Month: "2024-01"})
	}
	events = append(events,
		repositories.ExpiredEvent{ID: "c1", Type: string(models.EventContact), Month: "2024-02"},
		repositories.ExpiredEvent{ID: "bad", Type: "", Month: "2024-02"},
	)
	eventRepo := &fakeEventRepo{expired: events, raceOnce: true}
	notifRepo := &fakeNotificationRepo{expired: []any{"n1", "n2", "n3"}}
	metrics := NewMetrics(prometheus.NewRegistry())
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	clk := testclock.NewClock(now)
	cfg := testConfig()

	res, err := NewCleanupService(eventRepo, notifRepo, cfg, metrics, clk).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, cleanupBatchSize+12, res.EventsDeleted)
	assert.Equal(t, 3, res.NotificationsDeleted)
	assert.Equal(t, []string{"2024-01", "2024-02"}, res.AggregatedMonths)
	assert.Empty(t, eventRepo.expired)
	assert.Empty(t, notifRepo.expired)

	// Untyped events are deleted but not counted.
	assert.EqualValues(t, cleanupBatchSize+10, eventRepo.rollups["2024-01"][string(models.EventSiteView)])
	assert.Equal(t, map[string]int64{string(models.EventContact): 1}, eventRepo.rollups["2024-02"])

	assert.Equal(t, float64(cleanupBatchSize+12), testutil.ToFloat64(metrics.cleanupDeleted.WithLabelValues(repositories.CollEvents)))

	cutoff := now.Add(-cfg.EventRetention)
	require.NotEmpty(t, eventRepo.cutoffs)
	require.NotEmpty(t, notifRepo.cutoffs)
	for _, c := range append(eventRepo.cutoffs, notifRepo.cutoffs...) {
		assert.True(t, cutoff.Equal(c), "cutoff %s, want %s", c, cutoff)
	}
}

func TestCleanupRunDeletesNonStringIDs(t *testing.T) {
	var events []repositories.ExpiredEvent
	for i := 0; i < cleanupBatchSize; i++ {
		var id any = fmt.Sprintf("e%d", i)
		if i == 7 {
			id = int32(7)
		}
		events = append(events, repositories.ExpiredEvent{ID: id, Type: string(models.EventLike), Month: "2024-03"})
	}
	events = append(events, repositories.ExpiredEvent{ID: "tail", Type: string(models.EventLike), Month: "2024-03"})
	eventRepo := &fakeEventRepo{expired: events}
	notifRepo := &fakeNotificationRepo{expired: []any{int64(42), "n1"}}
	clk := testclock.NewClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	res, err := NewCleanupService(eventRepo, notifRepo, testConfig(), nil, clk).Run(context.Background())
	require.NoError(t, err)

	// A full first batch means a second pass picks up the tail.
	assert.Equal(t, cleanupBatchSize+1, res.EventsDeleted)
	assert.Contains(t, eventRepo.deleted, int32(7))
	assert.Contains(t, eventRepo.deleted, "tail")
	assert.Equal(t, 2, res.NotificationsDeleted)
	assert.Empty(t, notifRepo.expired)
}

func TestCleanupRunNothingToDo(t *testing.T) {
	clk := testclock.NewClock(time.Now())
	res, err := NewCleanupService(&fakeEventRepo{}, &fakeNotificationRepo{}, testConfig(), nil, clk).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.EventsDeleted)
	assert.Zero(t, res.NotificationsDeleted)
	assert.NotNil(t, res.AggregatedMonths)
}
