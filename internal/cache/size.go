// Package cache provides the opt-in relationship size cache.
package cache

import (
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/relations/internal/relation"
)

const (
	defaultMaxEntries = 10000
	defaultTTL        = 30 * time.Second
)

// SizeCache is an LRU of collection sizes keyed by relation.CacheKey.
type SizeCache struct {
	lru       *ccache.Cache[int]
	ttl       time.Duration
	log       *logrus.Logger
	closeOnce sync.Once
}

// Option configures a SizeCache.
type Option func(*SizeCache, *int64)

// WithMaxEntries caps the number of cached sizes.
func WithMaxEntries(n int64) Option {
	return func(_ *SizeCache, maxEntries *int64) {
		if n > 0 {
			*maxEntries = n
		}
	}
}

// WithTTL sets how long a cached size stays valid.
func WithTTL(ttl time.Duration) Option {
	return func(c *SizeCache, _ *int64) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

var _ relation.SizeCache = (*SizeCache)(nil)

// NewSizeCache creates a SizeCache. Call Stop to release its worker.
func NewSizeCache(log *logrus.Logger, opts ...Option) *SizeCache {
	c := &SizeCache{ttl: defaultTTL, log: log}
	maxEntries := int64(defaultMaxEntries)

	for _, opt := range opts {
		opt(c, &maxEntries)
	}

	c.lru = ccache.New(ccache.Configure[int]().MaxSize(maxEntries))

	return c
}

// Get returns the cached size for key if present and not expired.
func (c *SizeCache) Get(key string) (int, bool) {
	item := c.lru.Get(key)
	if item == nil || item.Expired() {
		return 0, false
	}

	return item.Value(), true
}

// Set stores size under key.
func (c *SizeCache) Set(key string, size int) {
	c.lru.Set(key, size, c.ttl)
}

// InvalidateNode drops every cached size rooted at nodeID.
func (c *SizeCache) InvalidateNode(nodeID string) {
	n := c.lru.DeletePrefix(relation.CacheKeyPrefix(nodeID))
	if n > 0 {
		c.log.WithFields(logrus.Fields{"node_id": nodeID, "entries": n}).Debug("size cache invalidated")
	}
}

// Stop releases the cache's background worker.
func (c *SizeCache) Stop() {
	c.closeOnce.Do(c.lru.Stop)
}
