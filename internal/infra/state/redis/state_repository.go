package redisstate

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStateRepository is the Redis implementation of
// repository.StateRepository: token-bucket counters and presence markers in
// one TTL-capable store.
type RedisStateRepository struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStateRepository creates the repository. keyPrefix namespaces all
// keys ("cc:" by default).
func NewRedisStateRepository(client *redis.Client, keyPrefix string) *RedisStateRepository {
	if client == nil {
		panic("redis client cannot be nil for RedisStateRepository")
	}
	if keyPrefix == "" {
		keyPrefix = "cc:"
	}
	return &RedisStateRepository{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// --- Key Generation Helpers ---

func (r *RedisStateRepository) rateKey(key string) string {
	return fmt.Sprintf("%srl:%s", r.keyPrefix, key)
}

func (r *RedisStateRepository) presenceKey(userID string) string {
	return fmt.Sprintf("%spresence:%s", r.keyPrefix, userID)
}

// IncrementRate atomically increments the window counter. Only the first
// increment sets the TTL; later increments leave the window expiry alone,
// which is what makes the budget a fixed window instead of a sliding one.
func (r *RedisStateRepository) IncrementRate(ctx context.Context, key string, window time.Duration) (int64, error) {
	redisKey := r.rateKey(key)
	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("redis: failed to increment rate counter on key %s: %w", redisKey, err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return 0, fmt.Errorf("redis: failed to set rate window on key %s: %w", redisKey, err)
		}
	}
	return count, nil
}

// TouchPresence sets the marker with the given TTL. Existence of a fresh
// marker is the whole protocol; there is no explicit offline event.
func (r *RedisStateRepository) TouchPresence(ctx context.Context, userID string, ttl time.Duration) error {
	key := r.presenceKey(userID)
	if err := r.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to touch presence for user %s: %w", userID, err)
	}
	return nil
}

func (r *RedisStateRepository) IsOnline(ctx context.Context, userID string) (bool, error) {
	key := r.presenceKey(userID)
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis: failed to check presence for user %s: %w", userID, err)
	}
	return n > 0, nil
}

func (r *RedisStateRepository) ClearPresence(ctx context.Context, userID string) error {
	key := r.presenceKey(userID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis: failed to clear presence for user %s: %w", userID, err)
	}
	return nil
}
