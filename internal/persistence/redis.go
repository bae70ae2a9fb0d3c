package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/darshan-pass-service/internal/config"
)

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// RedisKV stores blobs as plain string keys without expiry.
type RedisKV struct {
	client redis.UniversalClient
}

// NewRedisKV builds a KeyValue on top of a redis client.
func NewRedisKV(client redis.UniversalClient) *RedisKV {
	return &RedisKV{client: client}
}

func (k *RedisKV) Save(ctx context.Context, key string, blob []byte) error {
	if k.client == nil {
		return ErrBackendUnavailable
	}
	return k.client.Set(ctx, key, blob, 0).Err()
}

func (k *RedisKV) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if k.client == nil {
		return nil, false, ErrBackendUnavailable
	}
	blob, err := k.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return blob, true, nil
}

func (k *RedisKV) Ping(ctx context.Context) error {
	if k.client == nil {
		return ErrBackendUnavailable
	}
	return k.client.Ping(ctx).Err()
}

func (k *RedisKV) Name() string { return "redis" }
