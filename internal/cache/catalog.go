package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/lobbyfinder/internal/catalog"
	"github.com/jason-s-yu/lobbyfinder/internal/models"
)

const keyPrefix = "catalog:"

// CatalogCache is a read-through cache in front of another catalog. Values
// are stored as JSON with a TTL. When Redis misbehaves reads fall through to
// the wrapped catalog and the failure is logged.
type CatalogCache struct {
	next   catalog.Catalog
	rdb    *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewCatalogCache wraps next with a Redis cache.
func NewCatalogCache(next catalog.Catalog, rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *CatalogCache {
	return &CatalogCache{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

// cached serves key from Redis, or calls load and stores its result.
// Errors from load are returned as is and never cached.
func cached[T any](ctx context.Context, c *CatalogCache, key string, load func() (T, error)) (T, error) {
	key = keyPrefix + key
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v T
		if jerr := json.Unmarshal(raw, &v); jerr == nil {
			return v, nil
		}
		c.logger.WithField("key", key).Warn("discarding undecodable catalog cache entry")
	case !errors.Is(err, redis.Nil):
		c.logger.WithField("key", key).Warnf("catalog cache read failed: %v", err)
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v, nil
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.WithField("key", key).Warnf("catalog cache write failed: %v", err)
	}
	return v, nil
}

func (c *CatalogCache) ListGames(ctx context.Context, f catalog.GameFilter) ([]models.Game, error) {
	key := fmt.Sprintf("games:p=%d:d=%d:q=%s", f.PlatformID, f.DistributorID, f.Query)
	return cached(ctx, c, key, func() ([]models.Game, error) { return c.next.ListGames(ctx, f) })
}

func (c *CatalogCache) GetGame(ctx context.Context, id int64) (*models.Game, error) {
	return cached(ctx, c, fmt.Sprintf("game:%d", id), func() (*models.Game, error) { return c.next.GetGame(ctx, id) })
}

func (c *CatalogCache) ListPlatforms(ctx context.Context) ([]models.Platform, error) {
	return cached(ctx, c, "platforms", func() ([]models.Platform, error) { return c.next.ListPlatforms(ctx) })
}

func (c *CatalogCache) GetPlatform(ctx context.Context, id int64) (*models.Platform, error) {
	return cached(ctx, c, fmt.Sprintf("platform:%d", id), func() (*models.Platform, error) { return c.next.GetPlatform(ctx, id) })
}

func (c *CatalogCache) ListDistributors(ctx context.Context) ([]models.Distributor, error) {
	return cached(ctx, c, "distributors", func() ([]models.Distributor, error) { return c.next.ListDistributors(ctx) })
}

func (c *CatalogCache) GetDistributor(ctx context.Context, id int64) (*models.Distributor, error) {
	return cached(ctx, c, fmt.Sprintf("distributor:%d", id), func() (*models.Distributor, error) { return c.next.GetDistributor(ctx, id) })
}

func (c *CatalogCache) ListGameRanks(ctx context.Context, gameID int64) ([]models.GameRank, error) {
	return cached(ctx, c, fmt.Sprintf("ranks:%d", gameID), func() ([]models.GameRank, error) { return c.next.ListGameRanks(ctx, gameID) })
}

func (c *CatalogCache) ListAllGameRanks(ctx context.Context) ([]models.GameRank, error) {
	return cached(ctx, c, "ranks", func() ([]models.GameRank, error) { return c.next.ListAllGameRanks(ctx) })
}

// Flush drops every cached catalog entry, e.g. after reseeding.
func (c *CatalogCache) Flush(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("delete %s: %w", iter.Val(), err)
		}
	}
	return iter.Err()
}
