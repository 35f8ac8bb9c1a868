package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultMemoryEntries = 512

// MemoryPageCache is the single-process fallback used when no Redis is configured.
type MemoryPageCache struct {
	lru *expirable.LRU[string, []byte]
}

func NewMemoryPageCache(size int, ttl time.Duration) *MemoryPageCache {
	if size <= 0 {
		size = defaultMemoryEntries
	}
	return &MemoryPageCache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (c *MemoryPageCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	page, ok := c.lru.Get(key)
	return page, ok, nil
}

func (c *MemoryPageCache) Set(_ context.Context, key string, page []byte) error {
	c.lru.Add(key, page)
	return nil
}

func (c *MemoryPageCache) Clear(_ context.Context) error {
	c.lru.Purge()
	return nil
}

// Len counts stored entries, expired ones included until the janitor removes them.
func (c *MemoryPageCache) Len() int {
	return c.lru.Len()
}
