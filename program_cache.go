package buildopts

import (
	lru "github.com/hashicorp/golang-lru"
)

// DefaultProgramCacheSize bounds NewProgramCache when size is not positive.
const DefaultProgramCacheSize = 256

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

type lruProgramCache struct {
	cache *lru.Cache
}

// NewProgramCache returns a ProgramCache evicting the least recently used
// program once size entries are stored.
func NewProgramCache(size int) ProgramCache {
	if size <= 0 {
		size = DefaultProgramCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil
	}
	return &lruProgramCache{cache: cache}
}

func (c *lruProgramCache) Get(key string) (any, bool) {
	return c.cache.Get(key)
}

func (c *lruProgramCache) Set(key string, value any) {
	c.cache.Add(key, value)
}
