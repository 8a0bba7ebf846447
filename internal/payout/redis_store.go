package payout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "payout:request:"

// RedisStore keeps requests in Redis so several bot processes can share them.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing client. A zero ttl stores requests without expiry.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(userID int64) string {
	return fmt.Sprintf("%s%d", redisKeyPrefix, userID)
}

// Get loads the user's request; a missing key is reported as not found.
func (s *RedisStore) Get(ctx context.Context, userID int64) (Request, bool, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Request{}, false, nil
	}
	if err != nil {
		return Request{}, false, fmt.Errorf("redis get request: %w", err)
	}
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, false, fmt.Errorf("decode request: %w", err)
	}
	return req, true, nil
}

// Put stores the request as JSON.
func (s *RedisStore) Put(ctx context.Context, req Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	if err := s.client.Set(ctx, s.key(req.UserID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set request: %w", err)
	}
	return nil
}

// Delete removes the user's request.
func (s *RedisStore) Delete(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis del request: %w", err)
	}
	return nil
}
