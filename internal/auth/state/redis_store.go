package state

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed authorization request store.
// Key TTLs double as the purge mechanism: expired attempts vanish on
// their own, so memory stays bounded under login volume.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "authreq:",
	}
}

func (r *RedisStore) key(state string) string {
	return r.prefix + state
}

func (r *RedisStore) Save(ctx context.Context, req AuthorizationRequest) error {
	if req.State == "" {
		return fmt.Errorf("state: missing state value")
	}

	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("state: failed to marshal: %w", err)
	}

	return r.client.Set(ctx, r.key(req.State), data, TTL).Err()
}

func (r *RedisStore) Consume(ctx context.Context, stateValue string) (*AuthorizationRequest, error) {
	val, err := r.client.GetDel(ctx, r.key(stateValue)).Result()
	if err == redis.Nil {
		return nil, nil // unknown or already consumed
	}
	if err != nil {
		return nil, err
	}

	var req AuthorizationRequest
	if err := json.Unmarshal([]byte(val), &req); err != nil {
		return nil, fmt.Errorf("state: failed to unmarshal: %w", err)
	}

	return &req, nil
}
