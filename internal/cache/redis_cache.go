// Package cache stores rendered public article pages.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Page is a cached public rendering of one article.
type Page struct {
	ArticleID  string    `json:"article_id"`
	HTML       string    `json:"html"`
	RenderedAt time.Time `json:"rendered_at"`
}

// RedisCache keeps rendered pages in Redis keyed by slug.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache connects to redisURL and checks the connection.
func NewRedisCache(redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisCacheWithClient(client, ttl), nil
}

// NewRedisCacheWithClient creates a cache from an existing Redis client
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCache{client: client, prefix: "page:", ttl: ttl}
}

func (c *RedisCache) key(slug string) string {
	return c.prefix + slug
}

// Get returns the cached page for slug. ok is false on a miss.
func (c *RedisCache) Get(ctx context.Context, slug string) (page Page, ok bool, err error) {
	raw, err := c.client.Get(ctx, c.key(slug)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Page{}, false, nil
	}
	if err != nil {
		return Page{}, false, fmt.Errorf("get cached page: %w", err)
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return Page{}, false, fmt.Errorf("decode cached page: %w", err)
	}
	return page, true, nil
}

func (c *RedisCache) Set(ctx context.Context, slug string, page Page) error {
	if page.RenderedAt.IsZero() {
		page.RenderedAt = time.Now().UTC()
	}
	raw, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("encode page: %w", err)
	}
	if err := c.client.Set(ctx, c.key(slug), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache page: %w", err)
	}
	return nil
}

// Invalidate drops the pages cached under any of the slugs.
func (c *RedisCache) Invalidate(ctx context.Context, slugs ...string) error {
	keys := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if slug != "" {
			keys = append(keys, c.key(slug))
		}
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate pages: %w", err)
	}
	return nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Nop is the cache used when Redis is not configured: every lookup misses.
type Nop struct{}

func (Nop) Get(context.Context, string) (Page, bool, error) { return Page{}, false, nil }
func (Nop) Set(context.Context, string, Page) error          { return nil }
func (Nop) Invalidate(context.Context, ...string) error     { return nil }
