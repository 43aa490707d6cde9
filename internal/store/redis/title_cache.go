package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTitleTTL is the default TTL for cached page titles (24 hours)
const DefaultTitleTTL = 24 * time.Hour

// TitleCache remembers resolved page titles by URL.
type TitleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTitleCache creates a cache; a non-positive ttl uses DefaultTitleTTL.
func NewTitleCache(client *redis.Client, ttl time.Duration) *TitleCache {
	if ttl <= 0 {
		ttl = DefaultTitleTTL
	}
	return &TitleCache{client: client, ttl: ttl}
}

// Get returns the cached title of url. ok is false on a cache miss.
func (c *TitleCache) Get(ctx context.Context, url string) (title string, ok bool, err error) {
	title, err = c.client.Get(ctx, TitleKey(url)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get cached title: %w", err)
	}
	return title, true, nil
}

// Set stores the title of url.
func (c *TitleCache) Set(ctx context.Context, url, title string) error {
	if err := c.client.Set(ctx, TitleKey(url), title, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache title: %w", err)
	}
	return nil
}
