package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	myredis "campus_chat_server/internal/dao/redis"
)

type cacheEntry struct {
	value    string
	expireAt time.Time // 零值表示不过期
}

// Cache 进程内的 AsyncCacheService，driver = "memory" 时替代 Redis
// SubmitTask 同步执行
type Cache struct {
	mu      sync.Mutex
	strings map[string]cacheEntry
	sets    map[string]map[string]struct{}
	now     func() time.Time
}

// NewCache 创建空缓存
func NewCache() *Cache {
	return &Cache{
		strings: make(map[string]cacheEntry),
		sets:    make(map[string]map[string]struct{}),
		now:     time.Now,
	}
}

func (c *Cache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := cacheEntry{value: value}
	if ttl > 0 {
		entry.expireAt = c.now().Add(ttl)
	}
	c.strings[key] = entry
	return nil
}

func (c *Cache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.strings[key]
	if !ok {
		return "", nil
	}
	if !entry.expireAt.IsZero() && !c.now().Before(entry.expireAt) {
		delete(c.strings, key)
		return "", nil
	}
	return entry.value, nil
}

func (c *Cache) AddToSet(_ context.Context, key string, members ...interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	set := c.sets[key]
	if set == nil {
		set = make(map[string]struct{})
		c.sets[key] = set
	}
	for _, m := range members {
		set[toString(m)] = struct{}{}
	}
	return nil
}

func (c *Cache) GetSetMembers(_ context.Context, key string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	members := make([]string, 0, len(c.sets[key]))
	for m := range c.sets[key] {
		members = append(members, m)
	}
	return members, nil
}

func (c *Cache) IsSetMember(_ context.Context, key string, member interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sets[key][toString(member)]
	return ok, nil
}

func (c *Cache) RemoveFromSet(_ context.Context, key string, members ...interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	set := c.sets[key]
	for _, m := range members {
		delete(set, toString(m))
	}
	if len(set) == 0 {
		delete(c.sets, key)
	}
	return nil
}

// SubmitTask 同步执行
func (c *Cache) SubmitTask(action func()) {
	action()
}

// toString 与 go-redis 对参数的格式化保持一致
func toString(v interface{}) string {
	return fmt.Sprint(v)
}

var _ myredis.AsyncCacheService = (*Cache)(nil)
