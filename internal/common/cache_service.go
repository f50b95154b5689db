package common

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache is the contract for short-lived read caches
type Cache interface {
	// Get retrieves a value by key, reporting whether it was present
	Get(key string) (interface{}, bool)

	Set(key string, value interface{}, duration time.Duration)

	Delete(key string)

	// Flush drops every entry
	Flush()
}

// CacheService is the in-process cache backed by go-cache
type CacheService struct {
	cache *cache.Cache
}

var _ Cache = (*CacheService)(nil)

func NewCacheService(defaultExpiration, cleanupInterval time.Duration) *CacheService {
	return &CacheService{cache: cache.New(defaultExpiration, cleanupInterval)}
}

func (cs *CacheService) Set(key string, value interface{}, duration time.Duration) {
	cs.cache.Set(key, value, duration)
}

func (cs *CacheService) Get(key string) (interface{}, bool) {
	return cs.cache.Get(key)
}

func (cs *CacheService) Delete(key string) {
	cs.cache.Delete(key)
}

func (cs *CacheService) Flush() {
	cs.cache.Flush()
}

// GetOrSet returns the cached value for key, or loads and stores it
func GetOrSet[T any](c Cache, key string, duration time.Duration, loader func() (T, error)) (T, error) {
	if val, found := c.Get(key); found {
		if typed, ok := val.(T); ok {
			return typed, nil
		}
	}

	val, err := loader()
	if err != nil {
		var zero T
		return zero, err
	}

	c.Set(key, val, duration)
	return val, nil
}
