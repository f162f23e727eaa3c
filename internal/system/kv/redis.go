package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// redisStore implements Store on top of a Redis client. Lists map directly
// onto Redis lists (LPUSH inserts at the head), prefix listing uses SCAN.
type redisStore struct {
	client *redis.Client
}

// NewRedisStore initializes a Redis-backed store from a redis:// URL or a
// plain host:port address.
func NewRedisStore(address, password string, db int) (Store, error) {
	if strings.HasPrefix(address, "redis://") {
		opt, err := redis.ParseURL(address)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return &redisStore{client: redis.NewClient(opt)}, nil
	}
	return &redisStore{client: redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})}, nil
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *redisStore) List(ctx context.Context, prefix string) ([][]byte, error) {
	keys, err := s.scanKeys(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}

	raw, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	values := make([][]byte, 0, len(raw))
	for _, item := range raw {
		// MGET returns nil for keys deleted between SCAN and MGET.
		if str, ok := item.(string); ok {
			values = append(values, []byte(str))
		}
	}
	return values, nil
}

func (s *redisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	return s.scanKeys(ctx, prefix)
}

func (s *redisStore) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	keys, err := s.scanKeys(ctx, prefix)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	return s.client.Del(ctx, keys...).Result()
}

func (s *redisStore) Push(ctx context.Context, listKey string, value []byte) error {
	return s.client.LPush(ctx, listKey, value).Err()
}

func (s *redisStore) Range(ctx context.Context, listKey string, start, stop int64) ([][]byte, error) {
	raw, err := s.client.LRange(ctx, listKey, start, stop).Result()
	if err != nil {
		return nil, err
	}
	values := make([][]byte, 0, len(raw))
	for _, item := range raw {
		values = append(values, []byte(item))
	}
	return values, nil
}

func (s *redisStore) Trim(ctx context.Context, listKey string, max int64) error {
	if max <= 0 {
		return s.client.Del(ctx, listKey).Err()
	}
	return s.client.LTrim(ctx, listKey, 0, max-1).Err()
}

func (s *redisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}

func (s *redisStore) scanKeys(ctx context.Context, prefix string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := s.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}
