package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/go-rental-session/session"
	"github.com/redis/go-redis/v9"
)

// Client is the subset of *redis.Client the store uses
type Client interface {
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

var _ session.Store = (*RedisStore)(nil)

// RedisStore keeps the session as one Redis hash, one field per entry
type RedisStore struct {
	client Client
	key    string
	ttl    time.Duration
}

type Option func(*RedisStore)

// WithTTL expires the hash after ttl of inactivity. Zero keeps it forever.
func WithTTL(ttl time.Duration) Option {
	return func(r *RedisStore) {
		r.ttl = ttl
	}
}

func New(client Client, key string, options ...Option) *RedisStore {
	r := &RedisStore{client: client, key: key}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *RedisStore) Get(ctx context.Context) (session.Values, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("[redisstore Get] hgetall %s: %w", r.key, err)
	}

	values := session.Values{}
	for _, k := range session.Keys() {
		if v, ok := fields[string(k)]; ok && v != "" {
			values[k] = v
		}
	}
	return values, nil
}

// Set writes every entry in a single HSET so readers never see a partial session
func (r *RedisStore) Set(ctx context.Context, values session.Values) error {
	fields := make(map[string]any, len(session.Keys()))
	for _, k := range session.Keys() {
		fields[string(k)] = values[k]
	}

	if err := r.client.HSet(ctx, r.key, fields).Err(); err != nil {
		return fmt.Errorf("[redisstore Set] hset %s: %w", r.key, err)
	}
	if r.ttl > 0 {
		if err := r.client.Expire(ctx, r.key, r.ttl).Err(); err != nil {
			return fmt.Errorf("[redisstore Set] expire %s: %w", r.key, err)
		}
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("[redisstore Clear] del %s: %w", r.key, err)
	}
	return nil
}
