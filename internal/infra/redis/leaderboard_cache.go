package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizrelay/internal/app"
	"quizrelay/internal/domain"
)

// LeaderboardCache keeps recently computed leaderboards in Redis for a short
// TTL and recomputes through the underlying source on a miss. The ledger
// stays the sole source of truth; cached rows are derived and disposable.
// Keys are: leaderboard:window:{window} and leaderboard:run:{runID}.
type LeaderboardCache struct {
	client *redis.Client
	source app.LeaderboardSource
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewLeaderboardCache(client *redis.Client, source app.LeaderboardSource, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *LeaderboardCache) ByWindow(ctx context.Context, w domain.Window) ([]domain.LeaderboardRow, error) {
	if _, ok := w.Duration(); !ok {
		return nil, domain.ErrUnknownWindow
	}
	return c.get(ctx, "leaderboard:window:"+string(w), func() ([]domain.LeaderboardRow, error) {
		return c.source.ByWindow(ctx, w)
	})
}

func (c *LeaderboardCache) ByRun(ctx context.Context, runID string) ([]domain.LeaderboardRow, error) {
	return c.get(ctx, "leaderboard:run:"+runID, func() ([]domain.LeaderboardRow, error) {
		return c.source.ByRun(ctx, runID)
	})
}

func (c *LeaderboardCache) get(ctx context.Context, key string, compute func() ([]domain.LeaderboardRow, error)) ([]domain.LeaderboardRow, error) {
	if rows, ok := c.lookup(ctx, key); ok {
		return rows, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check in case another goroutine filled the key.
		if rows, ok := c.lookup(ctx, key); ok {
			return rows, nil
		}

		rows, err := compute()
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(rows); err == nil {
			// Cache fill is best-effort; a failed write just means recompute.
			_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.LeaderboardRow), nil
}

func (c *LeaderboardCache) lookup(ctx context.Context, key string) ([]domain.LeaderboardRow, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var rows []domain.LeaderboardRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, false
	}
	if rows == nil {
		rows = []domain.LeaderboardRow{}
	}
	return rows, true
}

func (c *LeaderboardCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
