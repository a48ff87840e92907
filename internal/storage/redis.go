package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OpenRedis returns a client for addr, or nil when addr is empty.
func OpenRedis(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

// RedisStore caches tile documents in Redis with an expiry.
type RedisStore struct {
	rc     *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore wraps rc. Keys are namespaced by prefix; ttl 0 keeps
// documents forever.
func NewRedisStore(rc *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{rc: rc, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(k Key) string { return s.prefix + "tile:" + k.String() }

func (s *RedisStore) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	b, err := s.rc.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, true, nil
}

func (s *RedisStore) Put(ctx context.Context, key Key, doc []byte) error {
	if err := s.rc.Set(ctx, s.key(key), doc, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
