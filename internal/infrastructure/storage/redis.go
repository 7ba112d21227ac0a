// internal/infrastructure/storage/redis.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keeps client state in Redis under "<prefix>:<namespace>:<key>"
type Redis struct {
	client    *redis.Client
	prefix    string
	retention time.Duration
}

// NewRedis creates a Redis-backed store. A zero retention keeps values
// until they are overwritten or deleted.
func NewRedis(client *redis.Client, prefix string, retention time.Duration) *Redis {
	return &Redis{
		client:    client,
		prefix:    prefix,
		retention: retention,
	}
}

// Get retrieves a value by key
func (r *Redis) Get(ctx context.Context, namespace, key string) (string, error) {
	value, err := r.client.Get(ctx, r.key(namespace, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

// Set stores a value under key
func (r *Redis) Set(ctx context.Context, namespace, key, value string) error {
	if err := r.client.Set(ctx, r.key(namespace, key), value, r.retention).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes keys
func (r *Redis) Delete(ctx context.Context, namespace string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = r.key(namespace, key)
	}

	if err := r.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}

func (r *Redis) key(namespace, key string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, namespace, key)
}
