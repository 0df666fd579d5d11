package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "callflow:draft:"

// RedisStore is a Redis-backed draft store for shared or multi-instance
// setups. Expiry is delegated to Redis key TTLs, so Cleanup is a no-op.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a draft store on an existing Redis client. The
// store takes ownership of the client; Close closes it. An empty prefix
// defaults to "callflow:draft:".
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(workflowID string) string {
	return s.prefix + workflowID
}

func (s *RedisStore) Get(ctx context.Context, workflowID string) (*Draft, error) {
	data, err := s.client.Get(ctx, s.key(workflowID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse draft: %w", err)
	}
	if d.IsExpired() {
		_ = s.client.Del(ctx, s.key(workflowID)).Err()
		return nil, nil
	}
	return &d, nil
}

func (s *RedisStore) Set(ctx context.Context, draft *Draft) error {
	ttl := time.Until(draft.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	if err := s.client.Set(ctx, s.key(draft.WorkflowID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, workflowID string) error {
	if err := s.client.Del(ctx, s.key(workflowID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Cleanup is a no-op: Redis expires draft keys natively.
func (s *RedisStore) Cleanup(ctx context.Context) error { return nil }

func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
