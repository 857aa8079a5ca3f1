package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps call sessions in Redis with a native TTL, refreshed on
// every save. This bounds session memory without any sweeper of our own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) key(callID string) string {
	return "callsession:" + callID
}

func (r *RedisStore) GetOrCreate(ctx context.Context, callID string) (*Session, error) {
	data, err := r.client.Get(ctx, r.key(callID)).Bytes()
	if err == redis.Nil {
		return New(callID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session from redis: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Read(ctx context.Context, callID string) (*Session, error) {
	return r.GetOrCreate(ctx, callID)
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(s.CallID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session in redis: %w", err)
	}
	return nil
}

func (r *RedisStore) MergeField(ctx context.Context, callID, name, value string) error {
	s, err := r.GetOrCreate(ctx, callID)
	if err != nil {
		return err
	}
	s.SetField(name, value)
	return r.Save(ctx, s)
}
