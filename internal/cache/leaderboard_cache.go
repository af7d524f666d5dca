// Package cache publishes the generated leaderboard to Redis so reads do not
// have to scan every stats file.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vytor/drumdungeon/internal/models"
)

// ErrLeaderboardEmpty is returned when nothing has been published yet.
var ErrLeaderboardEmpty = errors.New("leaderboard_cache: leaderboard is empty")

const (
	// keyRanks is a sorted set of username scored by rank (1 = best).
	keyRanks = "drumdungeon:leaderboard:ranks"
	// keyEntries is a hash of username to LeaderboardEntry JSON.
	keyEntries = "drumdungeon:leaderboard:entries"
	// keyGeneratedAt holds the RFC3339 generation time of the published board.
	keyGeneratedAt = "drumdungeon:leaderboard:generated_at"

	DefaultTTL = 24 * time.Hour
)

// LeaderboardCache stores a ranked leaderboard in a sorted set plus an entry hash.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLeaderboardCache(client *redis.Client, ttl time.Duration) *LeaderboardCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &LeaderboardCache{client: client, ttl: ttl}
}

// Connect parses a redis:// URL and checks the server answers.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Publish replaces the cached board in one transaction.
func (c *LeaderboardCache) Publish(ctx context.Context, board *models.Leaderboard) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, keyRanks, keyEntries, keyGeneratedAt)

	if len(board.Students) > 0 {
		members := make([]redis.Z, 0, len(board.Students))
		fields := make(map[string]any, len(board.Students))
		for _, e := range board.Students {
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("failed to marshal entry: %w", err)
			}
			members = append(members, redis.Z{Score: float64(e.Rank), Member: e.Username})
			fields[e.Username] = data
		}
		pipe.ZAdd(ctx, keyRanks, members...)
		pipe.HSet(ctx, keyEntries, fields)
		pipe.Expire(ctx, keyRanks, c.ttl)
		pipe.Expire(ctx, keyEntries, c.ttl)
	}
	pipe.Set(ctx, keyGeneratedAt, board.GeneratedAt.UTC().Format(time.RFC3339), c.ttl)

	_, err := pipe.Exec(ctx)
	return err
}

// Top returns the best n entries. n <= 0 returns the whole board.
func (c *LeaderboardCache) Top(ctx context.Context, n int) (*models.Leaderboard, error) {
	stop := int64(-1)
	if n > 0 {
		stop = int64(n - 1)
	}
	usernames, err := c.client.ZRange(ctx, keyRanks, 0, stop).Result()
	if err != nil {
		return nil, err
	}
	if len(usernames) == 0 {
		return nil, ErrLeaderboardEmpty
	}

	raw, err := c.client.HMGet(ctx, keyEntries, usernames...).Result()
	if err != nil {
		return nil, err
	}
	entries, err := decodeEntries(raw)
	if err != nil {
		return nil, err
	}

	board := &models.Leaderboard{Students: entries}
	if ts, err := c.client.Get(ctx, keyGeneratedAt).Result(); err == nil {
		board.GeneratedAt, _ = time.Parse(time.RFC3339, ts)
	}
	return board, nil
}

// Invalidate drops the cached board, forcing the next read to rebuild.
func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, keyRanks, keyEntries, keyGeneratedAt).Err()
}

// decodeEntries skips hash fields that expired between ZRANGE and HMGET.
func decodeEntries(raw []any) ([]models.LeaderboardEntry, error) {
	entries := make([]models.LeaderboardEntry, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var e models.LeaderboardEntry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
