package otp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to url and pings it before returning.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func attemptsKey(key string) string {
	return key + ":attempts"
}

func (s *RedisStore) Put(ctx context.Context, key, code string, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, key, code, ttl)
		p.Del(ctx, attemptsKey(key))
		return nil
	})
	return err
}

func (s *RedisStore) Match(ctx context.Context, key, code string, maxAttempts int, consume bool) error {
	stored, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrInvalidCode
	}
	if err != nil {
		return fmt.Errorf("get otp: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) == 1 {
		if !consume {
			return nil
		}
		// Only the caller that actually deletes the key wins.
		n, err := s.client.Del(ctx, key, attemptsKey(key)).Result()
		if err != nil {
			return fmt.Errorf("consume otp: %w", err)
		}
		if n == 0 {
			return ErrInvalidCode
		}
		return nil
	}

	var attempts *redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		attempts = p.Incr(ctx, attemptsKey(key))
		p.Expire(ctx, attemptsKey(key), time.Hour)
		return nil
	})
	if err != nil {
		return fmt.Errorf("count otp attempt: %w", err)
	}
	if attempts.Val() >= int64(maxAttempts) {
		s.client.Del(ctx, key, attemptsKey(key))
		return ErrTooManyAttempts
	}
	return ErrInvalidCode
}
