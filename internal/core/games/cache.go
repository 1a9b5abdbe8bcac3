package games

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// trendingCacheTTL is how long a trending page stays fresh. Trending is
// the one high-traffic query worth absorbing bursts for; everything else
// goes straight upstream.
const trendingCacheTTL = 60 * time.Second

// trendingCacheSize bounds how many distinct limit/offset pages are kept.
const trendingCacheSize = 32

// trendingCache is a short-TTL in-memory cache keyed by pagination.
// Entries expire lazily and are replaced wholesale on refresh.
type trendingCache struct {
	lru *expirable.LRU[string, []Game]
}

func newTrendingCache(ttl time.Duration) *trendingCache {
	if ttl <= 0 {
		ttl = trendingCacheTTL
	}
	return &trendingCache{
		lru: expirable.NewLRU[string, []Game](trendingCacheSize, nil, ttl),
	}
}

func trendingKey(limit, offset int) string {
	return fmt.Sprintf("trending:%d:%d", limit, offset)
}

func (c *trendingCache) get(limit, offset int) ([]Game, bool) {
	return c.lru.Get(trendingKey(limit, offset))
}

func (c *trendingCache) set(limit, offset int, games []Game) {
	c.lru.Add(trendingKey(limit, offset), games)
}
