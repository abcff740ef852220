package cacheinfra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-market-cache/cache"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a cache.DocumentStore backed by RedisJSON.
type RedisStore struct {
	client    redis.UniversalClient
	opTimeout time.Duration
}

var (
	_ cache.DocumentStore  = (*RedisStore)(nil)
	_ cache.ExpiringWriter = (*RedisStore)(nil)
)

// NewRedisStore validates cfg and opens a client. RESP2 is used because the
// JSON command replies are only stable in that protocol.
func NewRedisStore(cfg cache.RedisConfig) (*RedisStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("redis store config: %w", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Protocol:     2,
		DialTimeout:  cfg.OpTimeout,
		ReadTimeout:  cfg.OpTimeout,
		WriteTimeout: cfg.OpTimeout,
	})

	return NewRedisStoreWithClient(client, cfg.OpTimeout), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client redis.UniversalClient, opTimeout time.Duration) *RedisStore {
	return &RedisStore{client: client, opTimeout: opTimeout}
}

func (s *RedisStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

// Ping verifies the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

// Close releases the client's connections.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Get implements cache.DocumentStore.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	val, err := s.client.JSONGet(ctx, key).Result()
	return reply(key, val, err)
}

// GetPath implements cache.DocumentStore.
func (s *RedisStore) GetPath(ctx context.Context, key string, path cache.Path) ([]byte, bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	val, err := s.client.JSONGet(ctx, key, path.String()).Result()
	return reply(key, val, err)
}

func reply(key, val string, err error) ([]byte, bool, error) {
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("json.get %s: %w", key, err)
	}
	if val == "" {
		return nil, false, nil
	}
	return []byte(val), true, nil
}

// Set implements cache.DocumentStore.
func (s *RedisStore) Set(ctx context.Context, key string, doc []byte) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.client.JSONSet(ctx, key, cache.Root().String(), doc).Err(); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// SetPath implements cache.DocumentStore.
func (s *RedisStore) SetPath(ctx context.Context, key string, path cache.Path, doc []byte) error {
	if _, _, isFilter := path.Filter(); isFilter {
		return fmt.Errorf("json.set %s %s: %w", key, path, cache.ErrUnsupportedPath)
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.client.JSONSet(ctx, key, path.String(), doc).Err(); err != nil {
		return fmt.Errorf("json.set %s %s: %w", key, path, err)
	}
	return nil
}

// SetWithExpiry implements cache.ExpiringWriter. JSON.SET and EXPIRE run in
// one MULTI/EXEC block so the key never exists without its TTL.
func (s *RedisStore) SetWithExpiry(ctx context.Context, key string, doc []byte, ttl time.Duration) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.JSONSet(ctx, key, cache.Root().String(), doc)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("json.set+expire %s: %w", key, err)
	}
	return nil
}

// Expire implements cache.DocumentStore.
func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("expire %s: %w", key, err)
	}
	return nil
}

// Delete implements cache.DocumentStore.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}
