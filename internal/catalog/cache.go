package catalog

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	listCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hearsight_video_list_cache_hits_total",
		Help: "Total number of video list cache hits.",
	})
	listCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hearsight_video_list_cache_misses_total",
		Help: "Total number of video list cache misses.",
	})
)

const allFoldersKey = "*"

// ListCache holds the per-folder video lists with a TTL.
// A nil *ListCache is valid and never hits.
type ListCache struct {
	cache *expirable.LRU[string, []Video]
}

// NewListCache creates a cache with maxSize entries that expire after ttl.
func NewListCache(maxSize int, ttl time.Duration) *ListCache {
	if maxSize <= 0 {
		maxSize = 256
	}
	return &ListCache{cache: expirable.NewLRU[string, []Video](maxSize, nil, ttl)}
}

func cacheKey(folderID *string) string {
	if folderID == nil {
		return allFoldersKey
	}
	return "folder:" + *folderID
}

// Get returns the cached list for folderID.
func (c *ListCache) Get(folderID *string) ([]Video, bool) {
	if c == nil {
		return nil, false
	}
	videos, ok := c.cache.Get(cacheKey(folderID))
	if ok {
		listCacheHitsTotal.Inc()
		return videos, true
	}
	listCacheMissesTotal.Inc()
	return nil, false
}

// Set stores the list for folderID.
func (c *ListCache) Set(folderID *string, videos []Video) {
	if c == nil {
		return
	}
	c.cache.Add(cacheKey(folderID), videos)
}

// Invalidate drops every cached list.
func (c *ListCache) Invalidate() {
	if c == nil {
		return
	}
	c.cache.Purge()
}
