package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jobportal/internal/models"
	"jobportal/internal/storage"

	"github.com/redis/go-redis/v9"
)

// RedisRepo caches public profiles for the session verifier so an
// authenticated request does not hit the credential store every time.
type RedisRepo struct {
	client *redis.Client
	ttl    time.Duration
}

func New(ctx context.Context, addr, pass string, db int, ttl time.Duration) (*RedisRepo, error) {
	const op = "storage.redis.New"

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     pass,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisRepo{
		client: client,
		ttl:    ttl,
	}, nil
}

func userKey(id string) string {
	return fmt.Sprintf("user:profile:%s", id)
}

// CacheUser stores the profile for the configured ttl.
func (r *RedisRepo) CacheUser(ctx context.Context, user models.PublicUser) error {
	const op = "storage.redis.CacheUser"

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.client.Set(ctx, userKey(user.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// CachedUser returns storage.ErrCacheMiss when nothing is stored for id.
func (r *RedisRepo) CachedUser(ctx context.Context, id string) (models.PublicUser, error) {
	const op = "storage.redis.CachedUser"

	data, err := r.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.PublicUser{}, storage.ErrCacheMiss
		}

		return models.PublicUser{}, fmt.Errorf("%s: %w", op, err)
	}

	var user models.PublicUser
	if err := json.Unmarshal(data, &user); err != nil {
		return models.PublicUser{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (r *RedisRepo) InvalidateUser(ctx context.Context, id string) error {
	const op = "storage.redis.InvalidateUser"

	if err := r.client.Del(ctx, userKey(id)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisRepo) Close() {
	r.client.Close()
}
