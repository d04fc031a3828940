// Package cache provides an optional Redis-backed cache for link targets,
// cutting a database round trip off the hot redirect path. Hit counting
// always goes to the store; only the target URI is cached.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const linkTTL = time.Hour

// LinkCache resolves link targets by id.
type LinkCache interface {
	GetURI(ctx context.Context, id string) (string, bool)
	SetURI(ctx context.Context, id, uri string)
	Invalidate(ctx context.Context, id string)
}

type redisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(redisURL string, logger *zap.Logger) (LinkCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		// Fall back to treating the value as a plain host:port.
		opt = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisCache{client: client, logger: logger}, nil
}

func linkKey(id string) string {
	return "link:" + id
}

func (c *redisCache) GetURI(ctx context.Context, id string) (string, bool) {
	uri, err := c.client.Get(ctx, linkKey(id)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Link cache read failed", zap.String("id", id), zap.Error(err))
		}
		return "", false
	}
	return uri, true
}

func (c *redisCache) SetURI(ctx context.Context, id, uri string) {
	if err := c.client.Set(ctx, linkKey(id), uri, linkTTL).Err(); err != nil {
		c.logger.Warn("Link cache write failed", zap.String("id", id), zap.Error(err))
	}
}

func (c *redisCache) Invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, linkKey(id)).Err(); err != nil {
		c.logger.Warn("Link cache invalidation failed", zap.String("id", id), zap.Error(err))
	}
}

type noopCache struct{}

// Noop returns a cache that never hits, for deployments without Redis.
func Noop() LinkCache {
	return noopCache{}
}

func (noopCache) GetURI(context.Context, string) (string, bool) { return "", false }
func (noopCache) SetURI(context.Context, string, string)        {}
func (noopCache) Invalidate(context.Context, string)            {}
