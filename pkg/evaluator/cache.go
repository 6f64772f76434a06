package evaluator

import "sync"

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MemoryCache is a ProgramCache backed by a guarded map.
type MemoryCache struct {
	mu       sync.RWMutex
	programs map[string]any
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{programs: map[string]any{}}
}

// Get implements ProgramCache.
func (c *MemoryCache) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.programs[key]
	return value, ok
}

// Set implements ProgramCache.
func (c *MemoryCache) Set(key string, value any) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.programs == nil {
		c.programs = map[string]any{}
	}
	c.programs[key] = value
}

// Len reports how many programs are cached.
func (c *MemoryCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.programs)
}

// scopedCache namespaces keys per engine so one cache can back every engine.
type scopedCache struct {
	prefix string
	cache  ProgramCache
}

func scopeCache(engine string, cache ProgramCache) ProgramCache {
	if cache == nil {
		return nil
	}
	return scopedCache{prefix: engine + ":", cache: cache}
}

func (s scopedCache) Get(key string) (any, bool) {
	return s.cache.Get(s.prefix + key)
}

func (s scopedCache) Set(key string, value any) {
	s.cache.Set(s.prefix+key, value)
}
