package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache 统计结果缓存，按链接 ID 存取，只按 TTL 过期，不主动失效
type Cache interface {
	Get(ctx context.Context, linkID string) (*Report, bool, error)
	Set(ctx context.Context, linkID string, report *Report, ttl time.Duration) error
}

// RedisCache Redis 实现
type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, prefix: "analytics:report:"}
}

func (c *RedisCache) Get(ctx context.Context, linkID string) (*Report, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+linkID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, false, err
	}
	return &report, true, nil
}

func (c *RedisCache) Set(ctx context.Context, linkID string, report *Report, ttl time.Duration) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+linkID, data, ttl).Err()
}

type memoryItem struct {
	report    *Report
	expiresAt time.Time
}

// MemoryCache 进程内实现，未配置 Redis 时使用
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]memoryItem), now: time.Now}
}

func (c *MemoryCache) Get(ctx context.Context, linkID string) (*Report, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[linkID]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(item.expiresAt) {
		delete(c.items, linkID)
		return nil, false, nil
	}
	return item.report, true, nil
}

func (c *MemoryCache) Set(ctx context.Context, linkID string, report *Report, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[linkID] = memoryItem{report: report, expiresAt: c.now().Add(ttl)}
	return nil
}
