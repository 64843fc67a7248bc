package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// RedisStore keeps each session in a Redis hash that expires after ttl.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttlOrDefault(ttl)}
}

func key(id string) string {
	return keyPrefix + id
}

func (s *RedisStore) Create(ctx context.Context, data Data) (string, error) {
	id := newID()
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key(id), data.fields())
		pipe.Expire(ctx, key(id), s.ttl)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}
	return id, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Data, error) {
	if id == "" {
		return nil, nil
	}
	m, err := s.client.HGetAll(ctx, key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	if len(m) == 0 {
		return nil, nil
	}
	return dataFromFields(m), nil
}

// Refresh restarts the expiry clock of a live session.
func (s *RedisStore) Refresh(ctx context.Context, id string) error {
	ok, err := s.client.Expire(ctx, key(id), s.ttl).Result()
	if err != nil {
		return fmt.Errorf("refreshing session: %w", err)
	}
	if !ok {
		return ErrNoSession
	}
	return nil
}

func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("destroying session: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
