package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"socialnet/internal/model"
)

const (
	// TagsKey holds the JSON-encoded tag list
	TagsKey = "tags:all"

	// TagsTTL bounds how stale the cached list can get if an invalidation is missed
	TagsTTL = time.Hour
)

// TagCache caches the full tag list.
// Using an interface enables testing with mocks and running without Redis.
type TagCache interface {
	// Get returns the cached list. found=false on a cache miss.
	Get(ctx context.Context) (tags []model.Tag, found bool, err error)

	// Set stores the list and refreshes the TTL.
	Set(ctx context.Context, tags []model.Tag) error

	// Invalidate drops the cached list so the next read goes to the database.
	Invalidate(ctx context.Context) error
}

// RedisTagCache implements TagCache with a single Redis string key.
type RedisTagCache struct {
	client *redis.Client
	log    logrus.FieldLogger
}

// NewTagCache creates a TagCache backed by Redis.
func NewTagCache(client *redis.Client, log logrus.FieldLogger) TagCache {
	return &RedisTagCache{client: client, log: log}
}

func (c *RedisTagCache) Get(ctx context.Context) ([]model.Tag, bool, error) {
	startTime := time.Now()

	raw, err := c.client.Get(ctx, TagsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.WithField("key", TagsKey).Debug("tag cache miss")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get tags: %w", err)
	}

	var tags []model.Tag
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, false, fmt.Errorf("decode cached tags: %w", err)
	}

	c.log.WithFields(logrus.Fields{
		"count":    len(tags),
		"duration": time.Since(startTime),
	}).Debug("tag cache hit")
	return tags, true, nil
}

func (c *RedisTagCache) Set(ctx context.Context, tags []model.Tag) error {
	raw, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	if err := c.client.Set(ctx, TagsKey, raw, TagsTTL).Err(); err != nil {
		return fmt.Errorf("set tags: %w", err)
	}
	return nil
}

func (c *RedisTagCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, TagsKey).Err(); err != nil {
		return fmt.Errorf("invalidate tags: %w", err)
	}
	return nil
}
