package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BigazyGalym/Diplom/internal/model"
)

const authCacheTTL = 5 * time.Minute

// cachedAuthContext is the JSON form of model.AuthContext.
type cachedAuthContext struct {
	KeyID         string   `json:"key_id"`
	KeyPrefix     string   `json:"key_prefix"`
	UserID        string   `json:"user_id"`
	Scopes        []string `json:"scopes"`
	RateLimitTier string   `json:"rate_limit_tier"`
}

func authContextKey(digest string) string { return key("auth", "ctx", digest) }

// authIndexKey holds, per key id, the digests cached for that key.
func authIndexKey(keyID string) string { return key("auth", "key", keyID) }

// GetAuthContext returns the auth context cached under digest, or nil on a
// miss. Corrupt entries count as misses.
func (c *Cache) GetAuthContext(ctx context.Context, digest string) (*model.AuthContext, error) {
	data, err := c.client.Get(ctx, authContextKey(digest)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get auth context: %w", err)
	}

	var cached cachedAuthContext
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, nil //nolint:nilerr
	}

	return &model.AuthContext{
		KeyID:         cached.KeyID,
		KeyPrefix:     cached.KeyPrefix,
		UserID:        cached.UserID,
		Scopes:        cached.Scopes,
		RateLimitTier: cached.RateLimitTier,
	}, nil
}

// SetAuthContext caches an auth context under digest and records the
// digest in the key's index so revocation can find it.
func (c *Cache) SetAuthContext(ctx context.Context, digest string, auth *model.AuthContext) error {
	data, err := json.Marshal(cachedAuthContext{
		KeyID:         auth.KeyID,
		KeyPrefix:     auth.KeyPrefix,
		UserID:        auth.UserID,
		Scopes:        auth.Scopes,
		RateLimitTier: auth.RateLimitTier,
	})
	if err != nil {
		return fmt.Errorf("marshal auth context: %w", err)
	}

	index := authIndexKey(auth.KeyID)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, authContextKey(digest), data, authCacheTTL)
		pipe.SAdd(ctx, index, digest)
		pipe.Expire(ctx, index, authCacheTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("set auth context: %w", err)
	}
	return nil
}

// InvalidateKey removes every cached auth context of a key.
func (c *Cache) InvalidateKey(ctx context.Context, keyID string) error {
	index := authIndexKey(keyID)

	digests, err := c.client.SMembers(ctx, index).Result()
	if err != nil {
		return fmt.Errorf("read auth index: %w", err)
	}

	keys := make([]string, 0, len(digests)+1)
	for _, d := range digests {
		keys = append(keys, authContextKey(d))
	}
	keys = append(keys, index)

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete auth contexts: %w", err)
	}
	return nil
}
