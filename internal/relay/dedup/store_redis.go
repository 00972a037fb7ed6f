package dedup

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	id "relaygate/pkg/domain"
)

const (
	// Redis key prefix for processed-message markers.
	processedKeyPrefix = "relay:processed:"

	// Markers outlive any plausible transport redelivery window.
	processedTTL = 7 * 24 * time.Hour
)

// RedisStore is a Redis-backed dedup store shared across instances.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed dedup store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Seen(ctx context.Context, messageID id.MessageID) (bool, error) {
	if messageID.IsNil() {
		return false, nil
	}
	_, err := s.client.Get(ctx, processedKeyPrefix+messageID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisStore) Mark(ctx context.Context, messageID id.MessageID) error {
	if messageID.IsNil() {
		return nil
	}
	// Store "1" as a simple marker; the key existence is what matters.
	return s.client.Set(ctx, processedKeyPrefix+messageID.String(), "1", processedTTL).Err()
}
