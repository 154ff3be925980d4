package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisTokenPrefix = "shopify:token:"

// RedisTokenStore keeps tokens outside the process so they survive restarts
// and are shared between replicas.
type RedisTokenStore struct {
	Client *redis.Client
}

func NewRedisTokenStore(ctx context.Context, addr, password string, db int) (*RedisTokenStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisTokenStore{Client: client}, nil
}

func (s *RedisTokenStore) Get(ctx context.Context, shop string) (string, error) {
	tok, err := s.Client.Get(ctx, redisTokenPrefix+shop).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("redis get token: %w", err)
	}
	return tok, nil
}

func (s *RedisTokenStore) Set(ctx context.Context, shop, token string) error {
	if err := s.Client.Set(ctx, redisTokenPrefix+shop, token, 0).Err(); err != nil {
		return fmt.Errorf("redis set token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) Delete(ctx context.Context, shop string) error {
	if err := s.Client.Del(ctx, redisTokenPrefix+shop).Err(); err != nil {
		return fmt.Errorf("redis delete token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) Close() error {
	return s.Client.Close()
}
