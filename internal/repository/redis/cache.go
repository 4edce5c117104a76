package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Rrens/property-mcp/internal/domain"
)

const (
	contentCachePrefix = "content:"
	defaultContentTTL  = 10 * time.Minute
	flushBatch         = 100
)

// ContentCache keeps rendered listing content in Redis
type ContentCache struct {
	client *Client
	ttl    time.Duration
}

// NewContentCache creates a new content cache
func NewContentCache(client *Client, ttl time.Duration) *ContentCache {
	if ttl <= 0 {
		ttl = defaultContentTTL
	}
	return &ContentCache{client: client, ttl: ttl}
}

// Get returns cached content, or nil without error on a miss
func (c *ContentCache) Get(ctx context.Context, key string) (*domain.RenderedContent, error) {
	data, err := c.client.rdb.Get(ctx, contentKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read content cache: %w", err)
	}

	var content domain.RenderedContent
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("failed to unmarshal content: %w", err)
	}

	return &content, nil
}

// Set caches rendered content
func (c *ContentCache) Set(ctx context.Context, key string, content *domain.RenderedContent) error {
	data, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal content: %w", err)
	}

	return c.client.rdb.Set(ctx, contentKey(key), data, c.ttl).Err()
}

// Flush deletes cached content for one property, or for every property when
// propertyID is empty. Keys are removed in batches with UNLINK.
func (c *ContentCache) Flush(ctx context.Context, propertyID string) (int64, error) {
	iter := c.client.rdb.Scan(ctx, 0, contentPattern(propertyID), flushBatch).Iterator()

	var (
		removed int64
		batch   = make([]string, 0, flushBatch)
	)
	unlink := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.client.rdb.Unlink(ctx, batch...).Result()
		if err != nil {
			return fmt.Errorf("failed to unlink cached content: %w", err)
		}
		removed += n
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == flushBatch {
			if err := unlink(); err != nil {
				return removed, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("failed to scan cached content: %w", err)
	}
	if err := unlink(); err != nil {
		return removed, err
	}
	return removed, nil
}

// contentPattern matches the keys of one property, or all content keys
func contentPattern(propertyID string) string {
	if propertyID == "" {
		return contentCachePrefix + "*"
	}
	return contentCachePrefix + propertyID + ":*"
}

func contentKey(key string) string {
	return contentCachePrefix + key
}
