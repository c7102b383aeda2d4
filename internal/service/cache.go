package service

import (
	"time"

	"github.com/alexanderramin/landminer/internal/domain"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const lookupCacheSize = 16

// lookupCache holds the land and tool lists per account with a TTL. A zero
// TTL disables caching.
type lookupCache struct {
	lands *expirable.LRU[string, []domain.Land]
	tools *expirable.LRU[string, []domain.Tool]
}

func newLookupCache(ttl time.Duration) *lookupCache {
	if ttl <= 0 {
		return &lookupCache{}
	}
	return &lookupCache{
		lands: expirable.NewLRU[string, []domain.Land](lookupCacheSize, nil, ttl),
		tools: expirable.NewLRU[string, []domain.Tool](lookupCacheSize, nil, ttl),
	}
}

func (c *lookupCache) getLands(account string) ([]domain.Land, bool) {
	if c.lands == nil {
		return nil, false
	}
	return c.lands.Get(account)
}

func (c *lookupCache) setLands(account string, lands []domain.Land) {
	if c.lands != nil {
		c.lands.Add(account, lands)
	}
}

func (c *lookupCache) getTools(account string) ([]domain.Tool, bool) {
	if c.tools == nil {
		return nil, false
	}
	return c.tools.Get(account)
}

func (c *lookupCache) setTools(account string, tools []domain.Tool) {
	if c.tools != nil {
		c.tools.Add(account, tools)
	}
}

// invalidateTools drops the tool list; tool in-use state changes with every action.
func (c *lookupCache) invalidateTools(account string) {
	if c.tools != nil {
		c.tools.Remove(account)
	}
}

func (c *lookupCache) purge() {
	if c.lands != nil {
		c.lands.Purge()
	}
	if c.tools != nil {
		c.tools.Purge()
	}
}
