package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/karlseguin/ccache/v3"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const versionKey = "listing:ver"

// ListingCache is a two level cache for catalog pages: an in-process
// ccache in front of Redis. Redis keys carry a generation number so that
// Invalidate only has to bump the generation.
type ListingCache struct {
	local  *ccache.Cache[[]byte]
	rdb    *redis.Client
	logger *logrus.Logger
	// localTTL caps how long a page lives in process memory, since other
	// instances cannot clear it.
	localTTL time.Duration
}

// NewListingCache builds the cache. rdb may be nil, in which case only the
// in-process level is used.
func NewListingCache(rdb *redis.Client, maxSize int64, logger *logrus.Logger) *ListingCache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &ListingCache{
		local:    ccache.New(ccache.Configure[[]byte]().MaxSize(maxSize)),
		rdb:      rdb,
		logger:   logger,
		localTTL: 30 * time.Second,
	}
}

func (c *ListingCache) Get(ctx context.Context, key string) ([]byte, bool) {
	gen := c.generation(ctx)
	if item := c.local.Get(gen + key); item != nil && !item.Expired() {
		return item.Value(), true
	}
	if c.rdb == nil {
		return nil, false
	}
	b, err := c.rdb.Get(ctx, "listing:"+gen+":"+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.warn(err, "listing cache get failed")
		}
		return nil, false
	}
	c.local.Set(gen+key, b, c.localTTL)
	return b, true
}

func (c *ListingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	gen := c.generation(ctx)
	c.local.Set(gen+key, value, min(ttl, c.localTTL))
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, "listing:"+gen+":"+key, value, ttl).Err(); err != nil {
		c.warn(err, "listing cache set failed")
	}
}

// Invalidate drops every cached page. Old Redis generations expire on
// their own TTL.
func (c *ListingCache) Invalidate(ctx context.Context) {
	c.local.Clear()
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Incr(ctx, versionKey).Err(); err != nil {
		c.warn(err, "listing cache invalidate failed")
	}
}

func (c *ListingCache) generation(ctx context.Context) string {
	if c.rdb == nil {
		return "0:"
	}
	n, err := c.rdb.Get(ctx, versionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.warn(err, "listing cache version lookup failed")
	}
	return strconv.FormatInt(n, 10) + ":"
}

func (c *ListingCache) warn(err error, msg string) {
	if c.logger != nil {
		c.logger.WithError(err).Warn(msg)
	}
}

func (c *ListingCache) Close() {
	c.local.Stop()
}
