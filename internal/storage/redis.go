package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on a Redis server
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to redisURL, which may be a redis:// URL or host:port
func NewRedisStore(redisURL string, logger *slog.Logger) (*RedisStore, error) {
	if redisURL == "" {
		return nil, errors.New("redis URL is empty")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		opts = &redis.Options{Addr: redisURL}
	}
	return &RedisStore{
		client: redis.NewClient(opts),
		logger: logger,
	}, nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client, logger *slog.Logger) *RedisStore {
	return &RedisStore{client: client, logger: logger}
}

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection pings until Redis answers or attempts run out
func (r *RedisStore) WaitForConnection(ctx context.Context, attempts int, delay time.Duration) error {
	for i := 0; i < attempts; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(delay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", attempts)
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Redis key not found", "key", key)
			return "", false, nil
		}
		r.logger.Error("Redis GET failed", "key", key, "error", err)
		return "", false, fmt.Errorf("redis get failed: %w", err)
	}
	r.logger.Debug("Redis GET successful", "key", key, "value_length", len(val))
	return val, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		r.logger.Error("Redis SET failed", "key", key, "error", err)
		return fmt.Errorf("redis set failed: %w", err)
	}
	r.logger.Debug("Redis SET successful", "key", key)
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Redis DEL failed", "key", key, "error", err)
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}
