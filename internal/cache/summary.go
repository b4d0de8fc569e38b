package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BigazyGalym/Diplom/internal/finance"
)

// summaryGenerationTTL outlives any summary entry, so a generation that
// expires and restarts at zero cannot meet a live entry from before.
const summaryGenerationTTL = 30 * 24 * time.Hour

func summaryGenerationKey(userID string) string {
	return key("finance", "gen", userID)
}

func summaryKey(userID, period string, gen int64) string {
	return key("finance", "summary", userID, period, strconv.FormatInt(gen, 10))
}

// SummaryGeneration returns the user's current summary generation, 0 if no
// write was recorded yet.
func (c *Cache) SummaryGeneration(ctx context.Context, userID string) (int64, error) {
	gen, err := c.client.Get(ctx, summaryGenerationKey(userID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get summary generation: %w", err)
	}
	return gen, nil
}

// BumpSummaryGeneration moves the user to a new generation. Entries stored
// under older generations are never read again and expire on their own.
func (c *Cache) BumpSummaryGeneration(ctx context.Context, userID string) error {
	k := summaryGenerationKey(userID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, summaryGenerationTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("bump summary generation: %w", err)
	}
	return nil
}

// GetSummary returns the summary cached for a period ("2006-01") under
// generation gen, or nil on a miss.
func (c *Cache) GetSummary(ctx context.Context, userID, period string, gen int64) (*finance.Summary, error) {
	k := summaryKey(userID, period, gen)
	data, err := c.client.Get(ctx, k).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get summary: %w", err)
	}

	var s finance.Summary
	if err := json.Unmarshal(data, &s); err != nil {
		// Drop the bad entry and recompute.
		_ = c.client.Del(ctx, k).Err()
		return nil, nil //nolint:nilerr
	}
	return &s, nil
}

// SetSummary caches a summary computed under generation gen for ttl.
func (c *Cache) SetSummary(ctx context.Context, userID, period string, gen int64, s *finance.Summary, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if ttl > summaryGenerationTTL {
		ttl = summaryGenerationTTL
	}
	return c.client.Set(ctx, summaryKey(userID, period, gen), data, ttl).Err()
}
