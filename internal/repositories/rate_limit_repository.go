package repositories

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/redis/go-redis/v9"
)

// RateLimitRepository answers "may key act once more inside window?" and
// records the attempt when it may.
type RateLimitRepository interface {
	// Allow reports whether an action for key is within limit over the
	// trailing window, recording it if so. Rejected attempts are not
	// recorded.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	// Prune drops state for keys whose window has fully elapsed.
	Prune(ctx context.Context) error
}

/* ------------------------------------------------------------------
   Redis: shared across instances
------------------------------------------------------------------ */

const redisKeyPrefix = "estate:ratelimit:"

// Sorted-set sliding window. Scores are millisecond timestamps; members
// are unique per attempt so concurrent calls in the same millisecond both
// count.
var slidingWindowScript = redis.NewScript(`
local key    = KEYS[1]
local now    = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit  = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
if redis.call('ZCARD', key) >= limit then
  return 0
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return 1
`)

type redisRateLimitRepository struct {
	rdb   redis.Scripter
	clock clock.Clock
}

func NewRedisRateLimitRepository(rdb redis.Scripter, clk clock.Clock) RateLimitRepository {
	if clk == nil {
		clk = clock.WallClock
	}
	return &redisRateLimitRepository{rdb: rdb, clock: clk}
}

func (r *redisRateLimitRepository) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return false, nil
	}
	now := r.clock.Now().UnixMilli()
	member := strconv.FormatInt(now, 10) + "-" + uuid.NewString()
	res, err := slidingWindowScript.Run(ctx, r.rdb,
		[]string{redisKeyPrefix + key},
		now, window.Milliseconds(), limit, member,
	).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

// Prune is a no-op: every key carries a TTL equal to its window.
func (r *redisRateLimitRepository) Prune(context.Context) error { return nil }

/* ------------------------------------------------------------------
   In-memory: single-instance development only
------------------------------------------------------------------ */

type memoryWindow struct {
	hits   []time.Time
	window time.Duration
}

type memoryRateLimitRepository struct {
	mu    sync.Mutex
	clock clock.Clock
	keys  map[string]*memoryWindow
}

func NewMemoryRateLimitRepository(clk clock.Clock) RateLimitRepository {
	if clk == nil {
		clk = clock.WallClock
	}
	return &memoryRateLimitRepository{clock: clk, keys: map[string]*memoryWindow{}}
}

func (m *memoryRateLimitRepository) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return false, nil
	}
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.keys[key]
	if !ok {
		w = &memoryWindow{}
		m.keys[key] = w
	}
	w.window = window
	w.hits = trimBefore(w.hits, now.Add(-window))
	if len(w.hits) >= limit {
		return false, nil
	}
	w.hits = append(w.hits, now)
	return true, nil
}

func (m *memoryRateLimitRepository) Prune(context.Context) error {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, w := range m.keys {
		w.hits = trimBefore(w.hits, now.Add(-w.window))
		if len(w.hits) == 0 {
			delete(m.keys, key)
		}
	}
	return nil
}

// trimBefore drops hits at or before cutoff. hits is ascending.
func trimBefore(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}
