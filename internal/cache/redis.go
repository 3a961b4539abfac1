package cache

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/huntdb95-cloud/PERSONALAUTO/internal/intake"
	"github.com/huntdb95-cloud/PERSONALAUTO/pkg/logger"
)

// RedisCache stores the draft as compact JSON under a single key with no TTL.
type RedisCache struct {
	client *redis.Client
	key    string
	log    *logger.Entry
}

// NewRedisCache creates a Redis-backed cache. An empty key uses DefaultKey.
func NewRedisCache(client *redis.Client, key string) *RedisCache {
	if key == "" {
		key = DefaultKey
	}
	return &RedisCache{client: client, key: key, log: logger.With("cmp", "cache.redis", "key", key)}
}

func (r *RedisCache) Load(ctx context.Context) (*intake.Document, error) {
	b, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return decodeRecord(r.log, b), nil
}

func (r *RedisCache) Save(ctx context.Context, doc intake.Document) error {
	b, err := intake.Encode(doc)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, b, 0).Err()
}

func (r *RedisCache) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
