package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache handles caching and fast state storage
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache connection
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisCache{
		client: client,
	}, nil
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Client returns the underlying Redis client
func (rc *RedisCache) Client() *redis.Client {
	return rc.client
}

// HealthCheck pings Redis to verify connection
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// Set stores a key-value pair with TTL
func (rc *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return rc.client.Set(ctx, key, value, ttl).Err()
}

// Get retrieves a value by key
func (rc *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return rc.client.Get(ctx, key).Result()
}

// Delete removes a key
func (rc *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return rc.client.Del(ctx, keys...).Err()
}

// PageCache keeps fetched team pages in Redis for a fixed TTL
type PageCache struct {
	cache *RedisCache
	ttl   time.Duration
}

// NewPageCache creates a page cache whose entries expire after ttl
func NewPageCache(rc *RedisCache, ttl time.Duration) *PageCache {
	return &PageCache{cache: rc, ttl: ttl}
}

// GetPage returns the cached body for url, reporting false on a miss
func (pc *PageCache) GetPage(ctx context.Context, url string) (string, bool, error) {
	body, err := pc.cache.Get(ctx, pageKey(url))
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return body, true, nil
}

// PutPage stores body for url
func (pc *PageCache) PutPage(ctx context.Context, url, body string) error {
	return pc.cache.Set(ctx, pageKey(url), body, pc.ttl)
}

// Invalidate drops the cached copy of url
func (pc *PageCache) Invalidate(ctx context.Context, url string) error {
	return pc.cache.Delete(ctx, pageKey(url))
}

func pageKey(url string) string {
	sum := sha1.Sum([]byte(url))
	return "courtside:page:" + hex.EncodeToString(sum[:])
}
