package marketdata

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"
)

// 缓存错误，调用方据此区分未命中与反序列化失败
var (
	ErrCacheMiss    = errors.New("cache miss")
	ErrCacheExpired = errors.New("cache expired")
)

// CacheProvider 行情缓存的注入点，默认进程内缓存，
// 服务启动时可替换为Redis实现
type CacheProvider interface {
	Get(key string, dest any) error
	Set(key string, value any, expiration time.Duration) error
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryCache 进程内JSON缓存，带过期时间
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]memoryEntry{}}
}

func (c *MemoryCache) Get(key string, dest any) error {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return ErrCacheMiss
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return ErrCacheExpired
	}
	return json.Unmarshal(entry.payload, dest)
}

func (c *MemoryCache) Set(key string, value any, expiration time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var expiresAt time.Time
	if expiration > 0 {
		expiresAt = time.Now().Add(expiration)
	}
	c.mu.Lock()
	c.entries[key] = memoryEntry{payload: payload, expiresAt: expiresAt}
	c.mu.Unlock()
	return nil
}

var (
	cacheMu       sync.RWMutex
	cacheProvider CacheProvider = NewMemoryCache()
)

// SetCacheProvider 替换缓存实现，传nil恢复为进程内缓存
func SetCacheProvider(p CacheProvider) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if p == nil {
		cacheProvider = NewMemoryCache()
		return
	}
	cacheProvider = p
}

func getCacheProvider() CacheProvider {
	cacheMu.RLock()
	defer cacheMu.RUnlock()
	return cacheProvider
}

func cacheKey(parts ...string) string {
	return "marketdata:" + strings.Join(parts, ":")
}
