package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "kiosk:session:"

type redisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

func (s *redisSessionStore) Put(ctx context.Context, sessionID string, ttl time.Duration) error {
	return s.client.Set(ctx, sessionKeyPrefix+sessionID, "1", ttl).Err()
}

func (s *redisSessionStore) Valid(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, sessionKeyPrefix+sessionID).Result()
	return n > 0, err
}

func (s *redisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}
