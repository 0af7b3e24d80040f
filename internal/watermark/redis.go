package watermark

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Key under which the watermark lives. The value is the same single
// timestamp string the file backend stores.
const redisKey = "pinsync:lastrun"

// RedisStore keeps the watermark in Redis, for deployments where the process
// runs on hosts without durable local storage.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context) (string, error) {
	value, err := s.client.Get(ctx, redisKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil // no watermark yet
		}
		return "", fmt.Errorf("failed to load watermark: %w", err)
	}
	return value, nil
}

func (s *RedisStore) Save(ctx context.Context, timestamp string) error {
	if err := s.client.Set(ctx, redisKey, timestamp, 0).Err(); err != nil {
		return fmt.Errorf("failed to save watermark: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, redisKey).Err(); err != nil {
		return fmt.Errorf("failed to clear watermark: %w", err)
	}
	return nil
}
